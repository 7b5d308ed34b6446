package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/api/handlers"
	"github.com/yourusername/asset-store-fs/api/middleware"
	"github.com/yourusername/asset-store-fs/pkg/logger"
)

// RouterDeps holds everything the HTTP layer needs
type RouterDeps struct {
	Assets      handlers.AssetService
	Jobs        handlers.JobQueue
	Metrics     http.Handler
	Logger      *zap.Logger
	MultiLogger *logger.MultiLogger
	LogsDir     string
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	router.Use(middleware.Logger(log, deps.MultiLogger))
	router.Use(middleware.Recovery(log, deps.MultiLogger))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(deps.Jobs, deps.Assets)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	v1 := router.Group("/api/v1")
	{
		assetHandler := handlers.NewAssetHandler(deps.Assets, log)
		assets := v1.Group("/assets")
		{
			assets.POST("/download", assetHandler.Download)
			assets.POST("/delete", assetHandler.Delete)
			assets.POST("/unpublish", assetHandler.Unpublish)
			assets.GET("", assetHandler.ListRecords)
			assets.GET("/stats", assetHandler.GetStats)
			assets.GET("/:locale/:uid", assetHandler.GetRecord)
		}

		jobHandler := handlers.NewJobHandler(deps.Jobs, log)
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.AddJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.GET("/:id", jobHandler.GetJob)
		}

		if deps.LogsDir != "" {
			logHandler := handlers.NewLogHandler(deps.LogsDir)
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/search", logHandler.SearchLogs)
				logs.GET("/:category/export", logHandler.ExportLogs)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
