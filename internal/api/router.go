package api

import (
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/internal/service/export"
	"github.com/ChaseRain/coverstudio/internal/service/studio"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	AllowedOrigins []string
	// FilesURL/FilesPath serve locally stored exports when both are set.
	FilesURL  string
	FilesPath string
}

func NewRouter(ctrl *studio.Controller, exporter *export.Exporter, log *logger.Logger, opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(opts.AllowedOrigins))
	r.Use(requestLogger(log))

	handler := NewHandler(ctrl, exporter, log)

	r.GET("/health", handler.Health)

	if opts.FilesURL != "" && opts.FilesPath != "" {
		r.Static(opts.FilesURL, opts.FilesPath)
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/options", handler.Options)
		v1.POST("/covers", handler.GenerateCover)
		v1.GET("/covers/current", handler.Current)
		v1.PUT("/covers/current/active", handler.SelectActive)
		v1.GET("/covers/:id/download", handler.Download)
		v1.GET("/history", handler.History)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Request-ID")
	cfg.ExposeHeaders = []string{"Content-Disposition", "X-Export-URL"}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Info("request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Next()
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
