package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleet/internal/handler"
	"fleet/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler  *handler.TripHandler
	RouteHandler *handler.RouteHandler
	RedisClient  *redis.Client
	NewRelicApp  *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.StartTrip)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/finalize", deps.TripHandler.FinalizeTrip)
			trips.POST("/:id/cancel", deps.TripHandler.CancelTrip)
		}

		// Route routes.
		routes := v1.Group("/routes")
		{
			routes.POST("", deps.RouteHandler.CreateRoute)
			routes.GET("", deps.RouteHandler.ListRoutes)
			routes.GET("/top", deps.RouteHandler.MostProfitable)
			routes.GET("/:id", deps.RouteHandler.GetRoute)
			routes.PUT("/:id", deps.RouteHandler.UpdateRoute)
			routes.DELETE("/:id", deps.RouteHandler.DeleteRoute)
			routes.GET("/:id/stats", deps.RouteHandler.GetStatistics)
			routes.GET("/:id/trips", deps.TripHandler.ListByRoute)
		}
	}

	return router
}
