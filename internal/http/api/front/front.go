// Package front registers the user-facing /v1 API.
package front

import (
	"errors"
	"strings"

	"github.com/brainpace/brainpace/internal/breakdown"
	"github.com/brainpace/brainpace/internal/config"
	handlers "github.com/brainpace/brainpace/internal/http/api/front/handlers"
	"github.com/brainpace/brainpace/internal/logging"
	"github.com/brainpace/brainpace/internal/quota"
	"github.com/brainpace/brainpace/internal/security"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usererr"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	errMissingAuthHeader = errors.New("missing authorization header")
	errInvalidAuthFormat = errors.New("invalid authorization format")
)

// Deps are the components the routes are served from.
type Deps struct {
	DB        *gorm.DB
	Store     *store.GormStore
	Gate      *quota.Gate
	Breakdown *breakdown.Service
	Auth      config.AuthConfig
}

// RegisterFrontRoutes registers health and /v1 routes with user authentication.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Store == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	authed := r.Group("/v1")
	authed.Use(userAuthMiddleware(deps.Store, deps.Auth))

	meHandler := handlers.NewMeHandler(deps.Store)
	authed.GET("/me", meHandler.Get)
	authed.DELETE("/me", meHandler.Delete)

	stateHandler := handlers.NewBrainStateHandler(deps.Store)
	authed.POST("/brain-states", stateHandler.Create)
	authed.GET("/brain-states/today", stateHandler.Today)
	authed.GET("/brain-states", stateHandler.List)

	adaptationHandler := handlers.NewAdaptationHandler(deps.Store)
	authed.GET("/adaptation", adaptationHandler.Current)
	authed.GET("/adaptation/preview", adaptationHandler.Preview)

	taskHandler := handlers.NewTaskHandler(deps.Store)
	authed.POST("/tasks", taskHandler.Create)
	authed.GET("/tasks", taskHandler.List)
	authed.GET("/tasks/:id", taskHandler.Get)
	authed.PUT("/tasks/:id", taskHandler.Update)
	authed.POST("/tasks/:id/complete", taskHandler.Complete)
	authed.DELETE("/tasks/:id", taskHandler.Delete)

	if deps.Breakdown != nil {
		breakdownHandler := handlers.NewBreakdownHandler(deps.Breakdown)
		authed.POST("/tasks/:id/breakdown", breakdownHandler.Create)
	}

	if deps.Gate != nil {
		quotaHandler := handlers.NewQuotaHandler(deps.Gate)
		authed.GET("/quota", quotaHandler.Get)
	}
}

// userAuthMiddleware verifies the identity provider token and maps its
// subject to a local user.
func userAuthMiddleware(users store.UserStore, authCfg config.AuthConfig) gin.HandlerFunc {
	opts := security.VerifyOptions{Issuer: authCfg.Issuer, Audience: authCfg.Audience}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, errMissingAuthHeader)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			abortUnauthorized(c, errInvalidAuthFormat)
			return
		}

		claims, errJWT := security.ParseUserToken(authCfg.JWTSecret, token, opts)
		if errJWT != nil {
			abortUnauthorized(c, errJWT)
			return
		}

		user, errUser := users.EnsureUser(c.Request.Context(), claims.Subject, claims.Email)
		if errUser != nil {
			log.WithError(errUser).Error("auth: resolve user failed")
			status, body := usererr.Render(errUser)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Set(logging.UserIDKey, user.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	log.WithError(err).Debug("auth: rejected request")
	status, body := usererr.Render(usererr.New(usererr.KindUnauthorized, err))
	c.AbortWithStatusJSON(status, body)
}
