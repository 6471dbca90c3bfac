// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"shopreg/internal/delivery/http/middleware"
	"shopreg/internal/delivery/http/router/handler"
	"shopreg/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const userIDParam = "userId"

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	Metrics             *metrics.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
	metrics             *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		userHandler:         params.UserHandler,
		authMiddleware:      params.AuthMiddleware,
		rateLimitMiddleware: params.RateLimitMiddleware,
		metrics:             params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))

	api := e.Group("/api")

	// Credential endpoints, throttled per client IP when rate limiting is enabled
	api.POST("/signup", r.authHandler.Signup, r.rateLimitMiddleware.Limit("signup"))
	api.POST("/signin", r.authHandler.Signin, r.rateLimitMiddleware.Limit("signin"))

	// Dashboard lookups require a valid token
	userGroup := api.Group("/user/:"+userIDParam, r.authMiddleware.Authenticate, r.authMiddleware.RequireOwner(userIDParam))
	{
		userGroup.GET("", r.userHandler.GetUser)
		userGroup.GET("/shops/:shopName", r.userHandler.GetShop)
		userGroup.GET("/shops/:shopName/qrcode", r.userHandler.GetShopQRCode)
	}
}
