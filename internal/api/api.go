// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockplan/internal/api/handlers"
	"stockplan/internal/api/middleware"
	"stockplan/internal/domain"
	"stockplan/internal/service"
)

// Services carries everything the router serves. Analysis fields may be
// nil when the server runs without a database; the run endpoints are then
// not registered.
type Services struct {
	Planning        *service.PlanningService
	AnalysisRunner  handlers.AnalysisRunner
	Runs            handlers.RunReader
	Recommendations handlers.RecommendationReader
	Defaults        domain.PlanningParams
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Planning != nil {
			planningHandler := handlers.NewPlanningHandler(services.Planning)

			componentsGroup := apiGroup.Group("/components")
			{
				componentsGroup.GET("", planningHandler.ListComponents)
				componentsGroup.GET("/:id/usage", planningHandler.GetUsage)
				componentsGroup.GET("/:id/recommendation", planningHandler.GetRecommendation)
			}

			apiGroup.GET("/portfolio/overview", planningHandler.GetPortfolioOverview)
			apiGroup.GET("/reports/portfolio.csv", planningHandler.DownloadPortfolioCSV)
		}

		if services.AnalysisRunner != nil && services.Runs != nil {
			analysisHandler := handlers.NewAnalysisHandler(
				services.AnalysisRunner,
				services.Runs,
				services.Recommendations,
				services.Defaults,
			)

			analysesGroup := apiGroup.Group("/analyses")
			{
				analysesGroup.POST("", analysisHandler.TriggerAnalysis)
				analysesGroup.GET("", analysisHandler.ListAnalyses)
				analysesGroup.GET("/:id", analysisHandler.GetAnalysis)
				analysesGroup.GET("/:id/recommendations", analysisHandler.GetAnalysisResults)
			}
		}
	}

	return router
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
