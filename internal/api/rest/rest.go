package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinjernot/wg-sub000/internal/api/middleware"
)

// SetupRoutes configures the ops routes
func SetupRoutes(router *gin.Engine, handler Handler, metricsHandler http.Handler, authCfg middleware.AuthConfig) {
	router.GET("/health", handler.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", handler.GetStatus)
		v1.POST("/accounts/:account/trades/:hash/release", middleware.Auth(authCfg), handler.ReleaseTrade)
	}
}
