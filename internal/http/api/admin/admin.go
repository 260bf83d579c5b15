// Package admin registers the operator API under /v0/admin.
package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"

	handlers "github.com/brainpace/brainpace/internal/http/api/admin/handlers"
	"github.com/brainpace/brainpace/internal/quota"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usage"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the components the operator routes are served from.
type Deps struct {
	DB    *gorm.DB
	Users store.UserStore
	Gate  *quota.Gate
	Usage *usage.GormRecorder
	Token string
}

// RegisterAdminRoutes registers operator routes guarded by a static bearer token.
// Nothing is registered when the token is empty.
func RegisterAdminRoutes(r *gin.Engine, deps Deps) {
	token := strings.TrimSpace(deps.Token)
	if r == nil || deps.DB == nil || deps.Users == nil || deps.Gate == nil || token == "" {
		return
	}

	authed := r.Group("/v0/admin")
	authed.Use(adminAuthMiddleware(token))

	quotaHandler := handlers.NewQuotaHandler(deps.DB, deps.Users, deps.Gate)
	authed.GET("/quotas", quotaHandler.List)
	authed.POST("/quotas/reset", quotaHandler.ResetDue)
	authed.GET("/users/:id/quota", quotaHandler.Get)
	authed.PUT("/users/:id/tier", quotaHandler.SetTier)

	if deps.Usage != nil {
		usageHandler := handlers.NewUsageHandler(deps.Users, deps.Usage)
		authed.GET("/users/:id/usage", usageHandler.Get)
	}
}

func adminAuthMiddleware(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		supplied := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || supplied == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin token"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(supplied), expected) != 1 {
			log.WithField("path", c.Request.URL.Path).Warn("admin: rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}
