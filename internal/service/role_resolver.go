package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/thesis-registry-api/internal/models"
	appErrors "github.com/noah-isme/thesis-registry-api/pkg/errors"
)

type roleStore interface {
	LoadRoleContext(ctx context.Context, userID string) (*models.RoleContext, error)
}

type roleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// RoleResolver consolidates role memberships into a RoleContext, optionally
// caching the result per user.
type RoleResolver struct {
	repo   roleStore
	cache  roleCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewRoleResolver constructs the resolver. cache may be nil.
func NewRoleResolver(repo roleStore, cache roleCache, ttl time.Duration, logger *zap.Logger) *RoleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleResolver{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func roleCacheKey(userID string) string {
	return "roles:" + userID
}

// Resolve returns the capabilities of the authenticated actor. cached is
// true when the roles were served from the role cache.
func (r *RoleResolver) Resolve(ctx context.Context, claims *models.JWTClaims) (roles *models.RoleContext, cached bool, err error) {
	if claims == nil || claims.UserID == "" {
		return nil, false, appErrors.ErrUnauthorized
	}
	key := roleCacheKey(claims.UserID)
	if r.cache != nil {
		var stored models.RoleContext
		hit, err := r.cache.Get(ctx, key, &stored)
		if err == nil && hit {
			return &stored, true, nil
		}
	}

	roles, err = r.repo.LoadRoleContext(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "unknown actor")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve roles")
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, roles, r.ttl); err != nil {
			r.logger.Warn("role cache write failed", zap.String("user_id", claims.UserID), zap.Error(err))
		}
	}
	return roles, false, nil
}

// Invalidate drops the cached roles of a user. Without it, membership
// changes reach a cached actor only after the cache TTL expires.
func (r *RoleResolver) Invalidate(ctx context.Context, userID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx, roleCacheKey(userID))
}
