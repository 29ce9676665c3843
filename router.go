package main

import (
	"atomichabits/config"
	"atomichabits/handler"
	"atomichabits/middleware"
	"atomichabits/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes carries everything setupRouter mounts. auth is nil in demo mode.
type routes struct {
	cfg       *config.Config
	habits    *handler.HabitHandler
	auth      *handler.AuthHandler
	health    *handler.HealthHandler
	protect   gin.HandlerFunc
	sessions  middleware.SessionStore
	rateLimit *middleware.RateLimiter
}

func setupRouter(r routes) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestTracingMiddleware(),
		middleware.RecoveryMiddleware(),
		middleware.RequestLogger(),
		middleware.MetricsMiddleware(),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(r.cfg.CORSOrigins),
		middleware.RequestSizeLimiter(r.cfg.MaxRequestSize),
	)
	if r.rateLimit != nil {
		router.Use(r.rateLimit.Middleware())
	}

	router.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "Route not found")
	})

	router.GET("/health", r.health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.CacheControlMiddleware("no-store"))
	if r.sessions != nil {
		api.Use(middleware.SessionMiddleware(r.sessions))
	}

	// Public routes (no authentication required)
	if r.auth != nil {
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.auth.Register)
			auth.POST("/login", r.auth.Login)
			auth.POST("/refresh", r.auth.Refresh)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(r.protect)

	if r.auth != nil {
		user := protected.Group("/user")
		{
			user.GET("", r.auth.GetProfile)
			user.POST("/logout", r.auth.Logout)
			user.POST("/2fa/setup", r.auth.Setup2FA)
			user.POST("/2fa/verify", r.auth.Verify2FA)
			user.POST("/2fa/disable", r.auth.Disable2FA)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("/active", r.auth.GetActiveSessions)
			sessions.POST("/logout-all", r.auth.LogoutAllSessions)
		}
	}

	habits := protected.Group("/habits")
	{
		habits.GET("", r.habits.ListHabits)
		habits.POST("", r.habits.CreateHabit)
		habits.GET("/categories", r.habits.CategoryCounts)
		habits.GET("/stats", r.habits.GetStats)
		habits.POST("/reset", r.habits.ResetHabits)

		habits.GET("/:id", r.habits.GetHabit)
		habits.PUT("/:id", r.habits.UpdateHabit)
		habits.DELETE("/:id", r.habits.DeleteHabit)
		habits.POST("/:id/complete", r.habits.CompleteHabit)
		habits.POST("/:id/archive", r.habits.ToggleArchive)
	}

	return router
}
