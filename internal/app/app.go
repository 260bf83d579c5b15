// Package app wires storage, services and routes into the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brainpace/brainpace/internal/breakdown"
	"github.com/brainpace/brainpace/internal/config"
	"github.com/brainpace/brainpace/internal/db"
	"github.com/brainpace/brainpace/internal/http/api/admin"
	"github.com/brainpace/brainpace/internal/http/api/front"
	"github.com/brainpace/brainpace/internal/logging"
	"github.com/brainpace/brainpace/internal/quota"
	"github.com/brainpace/brainpace/internal/ratelimit"
	"github.com/brainpace/brainpace/internal/store"
	"github.com/brainpace/brainpace/internal/usage"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// Components are the long-lived services behind the HTTP API.
type Components struct {
	DB        *gorm.DB
	Store     *store.GormStore
	Gate      *quota.Gate
	Limiter   *ratelimit.Manager
	Usage     *usage.GormRecorder
	Breakdown *breakdown.Service
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.Config) error {
	conn, err := db.Open(cfg.DSN())
	if err != nil {
		return err
	}
	return db.Migrate(conn.WithContext(ctx))
}

// NewComponents opens the database, migrates it and wires the services.
func NewComponents(cfg config.Config, generator breakdown.Generator) (*Components, error) {
	conn, err := db.Open(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, errMigrate
	}
	if generator == nil {
		generator = breakdown.NewClient(cfg.AI)
	}
	st := store.NewGormStore(conn)
	gate := quota.NewGate(conn, cfg.Quota)
	limiter := ratelimit.NewManager(ratelimit.StaticSettings(ratelimit.SettingsFromConfig(cfg.RateLimit)), nil, nil)
	recorder := usage.NewGormRecorder(conn)
	return &Components{
		DB:        conn,
		Store:     st,
		Gate:      gate,
		Limiter:   limiter,
		Usage:     recorder,
		Breakdown: breakdown.NewService(st, gate, limiter, generator).WithUsage(recorder),
	}, nil
}

// NewEngine builds the gin engine with middleware and every route.
func NewEngine(cfg config.Config, comps *Components) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinLogger())
	engine.Use(corsMiddleware())

	front.RegisterFrontRoutes(engine, front.Deps{
		DB:        comps.DB,
		Store:     comps.Store,
		Gate:      comps.Gate,
		Breakdown: comps.Breakdown,
		Auth:      cfg.Auth,
	})
	admin.RegisterAdminRoutes(engine, admin.Deps{
		DB:    comps.DB,
		Users: comps.Store,
		Gate:  comps.Gate,
		Usage: comps.Usage,
		Token: cfg.Auth.AdminToken,
	})

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}

// RunServer boots the API server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.Config) error {
	closer, errLog := logging.Setup(cfg.Log)
	if errLog != nil {
		return errLog
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	comps, err := NewComponents(cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if errClose := comps.Limiter.Close(); errClose != nil {
			log.WithError(errClose).Warn("close rate limiter")
		}
	}()

	quota.NewResetter(comps.Gate, cfg.Quota.ResetPollInterval).Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	engine := NewEngine(cfg, comps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithFields(log.Fields{
		"addr":       addr,
		"rate_limit": comps.Limiter.Backend(),
		"admin":      cfg.Auth.AdminToken != "",
	}).Info("starting brainpace server")
	return serve(ctx, srv)
}
