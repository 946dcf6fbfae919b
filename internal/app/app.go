package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/art-beyond-sight/sight-core/internal/config"
	"github.com/art-beyond-sight/sight-core/internal/database"
	"github.com/art-beyond-sight/sight-core/internal/middleware"
	pkgcron "github.com/art-beyond-sight/sight-core/internal/pkg/cron"
	pkgredis "github.com/art-beyond-sight/sight-core/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *mongo.Client
	rdb    *pkgredis.Client
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: config → Mongo → Redis → routes.
func New(logger *zap.Logger, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	// The Mongo client connects lazily, so an unreachable server surfaces
	// on the first query rather than at startup.
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	// Redis is optional. Without it the cache and idempotence middleware
	// receive a nil client and pass every request straight through.
	var rdb *pkgredis.Client
	if cfg.RedisEnabled() {
		rdb, err = pkgredis.Connect(cfg.Redis.URLValue())
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(newCORSConfig(cfg)))

	ctx, cancel := context.WithCancel(context.Background())
	sched := pkgcron.New()
	registerCronJobs(sched, cfg, logger)
	go sched.Start(ctx)

	app := &App{cfg: cfg, router: router, db: db, rdb: rdb, logger: logger, cancel: cancel, sched: sched}
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes client connections.
func (a *App) Shutdown() {
	a.cancel()
	if err := database.Disconnect(a.db); err != nil {
		a.logger.Warn("mongo disconnect failed", zap.Error(err))
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
}

var processStart = time.Now()
