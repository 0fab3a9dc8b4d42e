package api

import (
	"net/http"

	"pickup-backend/internal/admin/delivery"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, adminHandler *delivery.AdminHandler, adminSecret string) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Manual triggers and debugging (admin token required)
		admin := api.Group("/admin")
		admin.Use(delivery.AdminMiddleware(adminSecret))
		{
			admin.GET("/assign", adminHandler.Assign)
			admin.POST("/assign", adminHandler.Assign)
			admin.GET("/debug", adminHandler.Debug)
			admin.POST("/marketplace/expire", adminHandler.ExpireMarketplace)
			admin.POST("/sweeps/:kind", adminHandler.RunSweep)
		}
	}
}
