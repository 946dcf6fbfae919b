package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/art-beyond-sight/sight-core/internal/database"
	"github.com/art-beyond-sight/sight-core/internal/middleware"
	"github.com/art-beyond-sight/sight-core/internal/modules/analysis"
	"github.com/art-beyond-sight/sight-core/internal/modules/detect"
	"github.com/art-beyond-sight/sight-core/internal/modules/health"
	"github.com/art-beyond-sight/sight-core/internal/modules/tempimage"
	"github.com/art-beyond-sight/sight-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes() {
	r := a.router
	rdb := a.rdb.Raw()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "sight-core",
		"author":   "Art Beyond Sight",
		"version":  "1.0.0",
		"homepage": "https://github.com/art-beyond-sight/sight-core",
		"issues":   "https://github.com/art-beyond-sight/sight-core/issues",
	}

	apiPrefix := "/api"

	// Idempotence runs on every route and is a no-op without Redis.
	r.Use(middleware.Idempotence(rdb))

	tempImages := tempimage.NewHandler(a.cfg.TempImageDir(), a.cfg.BaseURLValue(), a.logger)

	// Root-level endpoints
	root := r.Group("")
	tempImages.RegisterStaticRoutes(root) // /temp_images/:filename

	// API
	api := r.Group(apiPrefix)
	api.Use(middleware.HTTPCache(rdb, middleware.HTTPCacheOptions{
		TTL:             a.cfg.HTTPCacheTTL(),
		EnableCDNHeader: true,
		Disable:         a.cfg.IsDev() || !a.cfg.HTTPCacheEnabled(),
		SkipPaths:       httpCacheSkipPaths(apiPrefix),
	}))

	// App info endpoints
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})
	api.GET("/clean_cache", func(c *gin.Context) {
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rdb)
		if err != nil {
			response.InternalErrorMsg(c, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
	})

	health.RegisterRoutes(api)

	// Analysis records
	store := analysis.NewStore(database.Collection(a.db, a.cfg))
	analysis.NewHandler(analysis.NewService(store, a.logger)).RegisterRoutes(api)

	// Ephemeral image uploads
	tempImages.RegisterRoutes(api)

	// Artwork detection proxy
	detect.NewHandler(detect.NewProvider(a.cfg.Detection, a.logger)).RegisterRoutes(api)
}

func httpCacheSkipPaths(apiPrefix string) []string {
	p := strings.TrimSuffix(strings.TrimSpace(apiPrefix), "/")
	if p == "" {
		p = "/api"
	}
	return []string{
		p + "/health",
		p + "/uptime",
		p + "/clean_cache",
	}
}
