package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/thesis-registry-api/internal/handler"
	"github.com/noah-isme/thesis-registry-api/internal/middleware"
	"github.com/noah-isme/thesis-registry-api/internal/repository"
	"github.com/noah-isme/thesis-registry-api/internal/service"
	"github.com/noah-isme/thesis-registry-api/pkg/cache"
	"github.com/noah-isme/thesis-registry-api/pkg/config"
	"github.com/noah-isme/thesis-registry-api/pkg/database"
	"github.com/noah-isme/thesis-registry-api/pkg/export"
	"github.com/noah-isme/thesis-registry-api/pkg/jobs"
	"github.com/noah-isme/thesis-registry-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/thesis-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/thesis-registry-api/pkg/middleware/requestid"
	"github.com/noah-isme/thesis-registry-api/pkg/storage"
)

// Container holds the wired dependencies shared by the API server and the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Metrics       *service.MetricsService
	Auth          *service.AuthService
	Roles         *service.RoleResolver
	Theses        *service.ThesisService
	Exports       *service.ExportService
	Attachments   *service.AttachmentService
	Notifications *service.NotificationService
	Events        *repository.EventLogRepository

	queue *jobs.Queue
}

// New connects to the database and wires services. Redis is optional: when it
// cannot be reached role caching is disabled.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	c := &Container{Config: cfg, Logger: log, DB: db, Metrics: service.NewMetricsService()}

	var cacheRepo service.CacheRepository
	if cfg.Roles.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, role cache disabled", zap.Error(err))
		} else {
			c.Redis = client
			cacheRepo = repository.NewCacheRepository(client, log)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, c.Metrics, cfg.Roles.CacheTTL, log, cacheRepo != nil)

	users := repository.NewUserRepository(db)
	thesisRepo := repository.NewThesisRepository(db)
	c.Events = repository.NewEventLogRepository(db)

	objects, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init attachment storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)

	c.Notifications = service.NewNotificationService(service.NewLogMailer(log), cfg.Notifications.Sender, cfg.Notifications.Enabled, c.Metrics, log)
	if cfg.Notifications.Enabled {
		c.queue = jobs.NewQueue("notifications", c.Notifications.Handle, jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			Logger:     log,
		})
		c.Notifications.UseQueue(c.queue)
	}

	c.Roles = service.NewRoleResolver(repository.NewRoleRepository(db), cacheSvc, cfg.Roles.CacheTTL, log)
	c.Auth = service.NewAuthService(users, log, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	c.Theses = service.NewThesisService(thesisRepo, repository.NewProgramRepository(db), users, c.Events, validator.New(), log,
		service.WithObjectStore(objects),
		service.WithStartNotifier(c.Notifications),
		service.WithThesisMetrics(c.Metrics),
		service.WithAttachmentRules(service.AttachmentRules{
			MaxFileSizeBytes: cfg.Attachments.MaxFileSizeBytes,
			AllowedMIMEs:     cfg.Attachments.AllowedMIMEs,
		}),
	)
	c.Exports = service.NewExportService(c.Theses, log, export.NewCSVExporter(), export.NewPDFExporter())
	c.Attachments = service.NewAttachmentService(c.Theses, thesisRepo, objects, signer, cfg.APIPrefix, log)
	return c, nil
}

// Migrate applies pending schema migrations.
func (c *Container) Migrate(ctx context.Context) (int, error) {
	return database.Migrate(ctx, c.DB)
}

// Start launches background workers.
func (c *Container) Start(ctx context.Context) {
	if c.queue != nil {
		c.queue.Start(ctx)
	}
}

// Close stops workers and releases connections.
func (c *Container) Close() {
	if c.queue != nil {
		c.queue.Stop()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// Router builds the HTTP engine.
func (c *Container) Router() *gin.Engine {
	if c.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(c.Logger))
	r.Use(corsmiddleware.New(c.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(c.Metrics))

	metricsHandler := handler.NewMetricsHandler(c.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(ctx *gin.Context) {
		if err := c.DB.PingContext(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if c.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(c.Config.APIPrefix, middleware.WithResponseMeta())
	handler.RegisterRoutes(api, handler.Handlers{
		Auth:        handler.NewAuthHandler(),
		Theses:      handler.NewThesisHandler(c.Theses, nil),
		Export:      handler.NewExportHandler(c.Exports),
		Attachments: handler.NewAttachmentHandler(c.Attachments),
		Metrics:     metricsHandler,
	}, []gin.HandlerFunc{
		middleware.JWT(c.Auth),
		middleware.ResolveRoles(c.Roles),
	}, func(action string) gin.HandlerFunc {
		return middleware.Audit(c.Logger, action, "thesis")
	})
	return r
}
