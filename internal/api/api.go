// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/shelfwatch/internal/api/handlers"
	"github.com/andresuchdata/shelfwatch/internal/api/middleware"
	"github.com/andresuchdata/shelfwatch/internal/domain"
	"github.com/andresuchdata/shelfwatch/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ReplenishmentService *service.ReplenishmentService
	DefaultPolicy        domain.PolicyParameters
}

// NewRouter wires the middleware chain and the replenishment routes.
func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	if services != nil && services.ReplenishmentService != nil {
		registerReplenishmentRoutes(v1, handlers.NewReplenishmentHandler(services.ReplenishmentService, services.DefaultPolicy))
	}

	return router
}

func registerReplenishmentRoutes(rg *gin.RouterGroup, h *handlers.ReplenishmentHandler) {
	group := rg.Group("/replenishment")
	group.GET("/policy", h.GetPolicy)
	group.GET("/evaluations", h.GetEvaluations)
	group.GET("/summary", h.GetSummary)
	group.GET("/alerts", h.GetAlerts)
	group.POST("/evaluate", h.PostEvaluate)
	group.POST("/refresh", h.PostRefresh)
}

// corsConfig allows the local dashboard by default. A "*" entry opens every origin.
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	switch {
	case allowAll:
		cfg.AllowOrigins = nil
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
