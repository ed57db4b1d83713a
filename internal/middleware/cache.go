package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "responseMeta"
	requestStartKey = "requestStart"
	rolesCachedKey  = "rolesCached"
)

// WithResponseMeta starts the metadata rendered in the envelope's meta field.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the actor's roles were served from the role cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if meta := storedMeta(c); meta != nil {
		meta[rolesCachedKey] = hit
	}
}

// ExtractMeta copies the request metadata for rendering and stamps the time
// spent so far. It returns nil unless WithResponseMeta is mounted.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := storedMeta(c)
	if meta == nil {
		return nil
	}
	out := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	if start, ok := c.Get(requestStartKey); ok {
		if t, ok := start.(time.Time); ok {
			out["processingTimeMs"] = time.Since(t).Milliseconds()
		}
	}
	return out
}

func storedMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, _ := value.(map[string]interface{})
	return meta
}
