package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grindx/fittrack/internal/service"
)

// SetupRoutes configures the Gin router with all application routes.
func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	workoutService service.WorkoutService,
	logService service.LogService,
	tokenTTL time.Duration,
) {
	authHandler := NewAuthHandler(authService, tokenTTL)
	workoutHandler := NewWorkoutHandler(workoutService)
	logHandler := NewLogHandler(logService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		// The workout catalog is readable without logging in.
		v1.GET("/workouts", workoutHandler.List)
		v1.GET("/workouts/:id", workoutHandler.Get)

		protected := v1.Group("")
		protected.Use(AuthMiddleware(authService))
		{
			protected.GET("/auth/me", authHandler.Me)
			protected.PUT("/auth/me", authHandler.UpdateProfile)

			protected.POST("/workouts", workoutHandler.Create)
			protected.PUT("/workouts/:id", workoutHandler.Update)
			protected.DELETE("/workouts/:id", workoutHandler.Delete)

			protected.GET("/logs", logHandler.List)
			protected.POST("/logs", logHandler.Create)
			protected.GET("/logs/:id", logHandler.Get)
			protected.PUT("/logs/:id", logHandler.Update)
			protected.DELETE("/logs/:id", logHandler.Delete)
			protected.POST("/logs/:id/like", logHandler.ToggleLike)
			protected.POST("/logs/:id/comments", logHandler.AddComment)
			protected.POST("/logs/:id/attachment", logHandler.RequestAttachmentUpload)
			protected.GET("/logs/:id/attachment", logHandler.GetAttachmentDownload)
		}
	}
}
