// Package router wires the HTTP routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/intake"
	"github.com/wso2/consent-intake-api/internal/system/config"
	"github.com/wso2/consent-intake-api/internal/system/constants"
	"github.com/wso2/consent-intake-api/internal/system/middleware"
)

// New builds the gin engine with all middleware and routes registered.
func New(cfg *config.Config, handler *intake.SubmissionHandler, registry *prometheus.Registry, logger *logrus.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationID())
	if cfg.CORS.Enabled {
		engine.Use(middleware.CORS(&cfg.CORS))
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled && registry != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := engine.Group(constants.APIBasePath)
	{
		api.POST("/consent-submissions", handler.HandleIngest)
		api.POST("/consent-submissions/validate", handler.HandleValidate)
		api.POST("/consent-submissions/documents", handler.HandleDocumentUpload)
	}

	logger.Info("Routes registered")
	return engine
}
