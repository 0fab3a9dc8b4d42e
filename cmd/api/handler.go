package api

import (
	"net/http"
	"time"

	"pickup-backend/internal/admin/delivery"
	"pickup-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	adminHandler *delivery.AdminHandler
	config       *config.Config
	log          *zap.Logger
}

func NewHandler(adminHandler *delivery.AdminHandler, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		adminHandler: adminHandler,
		config:       cfg,
		log:          log.Named("http"),
	}
}

// Router builds the gin engine with CORS, request logging and all routes
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.adminHandler, h.config.AdminJWTSecret)
	return r
}

// Server returns an http.Server for addr; the caller owns its lifecycle
func (h *Handler) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
