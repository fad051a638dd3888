// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cashbook/cashbook/internal/integration/entrypoint/controller"
	"github.com/cashbook/cashbook/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine           *gin.Engine
	healthController *controller.HealthController
	authController   *controller.AuthController
	dataController   *controller.DataController
	loginRateLimiter *middleware.RateLimiter
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	dataController *controller.DataController,
	loginRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController: healthController,
		authController:   authController,
		dataController:   dataController,
		loginRateLimiter: loginRateLimiter,
		authMiddleware:   authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()
	r.engine.Use(middleware.CORS())

	r.engine.GET("/health", r.healthController.Check)
	r.setupAPIRoutes()

	return r.engine
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	api := r.engine.Group("/api")
	{
		if r.authController != nil {
			api.POST("/register", r.authController.Register)
			if r.loginRateLimiter != nil {
				api.POST("/login", r.loginRateLimiter.Middleware(), r.authController.Login)
			} else {
				api.POST("/login", r.authController.Login)
			}
		}

		if r.dataController != nil && r.authMiddleware != nil {
			protected := api.Group("")
			protected.Use(r.authMiddleware.Authenticate())
			{
				protected.GET("/data", r.dataController.Get)
				protected.POST("/sync", r.dataController.Sync)
			}
		}
	}
}
