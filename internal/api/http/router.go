package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/byZeet/centralita-neron/internal/api/http/handlers"
	"github.com/byZeet/centralita-neron/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Operators      *handlers.OperatorsHandler
	Tickets        *handlers.TicketsHandler
	Chat           *handlers.ChatHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The board surface mirrors how the
// operator clients poll: reads and presence pings stay open, mutations
// require a bearer token, directory administration requires the admin role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/login", cfg.Operators.Login)
	app.Get("/operators", cfg.Operators.ListOperators)
	app.Get("/tickets", cfg.Tickets.ListTickets)
	app.Post("/status", cfg.Operators.UpdateStatus)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Put("/tickets/:id", cfg.Tickets.UpdateTicket)

	protected.Get("/channels", cfg.Chat.ListChannels)
	protected.Post("/channels", cfg.Chat.CreateChannel)
	protected.Get("/channels/:id/messages", cfg.Chat.ListMessages)
	protected.Post("/channels/:id/messages", cfg.Chat.SendMessage)

	admin := protected.Group("", auth.RequireAdmin())
	admin.Post("/operators", cfg.Operators.CreateOperator)
	admin.Put("/operators/:id", cfg.Operators.UpdateOperator)
	admin.Delete("/operators/:id", cfg.Operators.DeleteOperator)
	admin.Post("/tickets/cleanup", cfg.Tickets.CleanupTickets)
}
