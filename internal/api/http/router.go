package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/abhinav/feedback-service/internal/api/http/handlers"
	"github.com/abhinav/feedback-service/internal/auth"
	"github.com/abhinav/feedback-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Feedback       *handlers.FeedbackHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The authentication gate runs on the whole
// /api group; anonymous requests pass through it and are only rejected by the
// role guards on protected routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Post("/auth/register", cfg.Users.Register)
	api.Post("/auth/login", cfg.Users.Login)

	api.Get("/users", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)

	api.Get("/feedback", cfg.Feedback.List)
	api.Get("/feedback/:id", cfg.Feedback.GetByID)
	api.Post("/feedback", auth.RequireRole(domain.RoleUser), cfg.Feedback.Create)
}
