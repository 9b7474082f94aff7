package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/callcenter-service/internal/api/http/handlers"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Calls          *handlers.CallsHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	// Authentication is attached per prefix so unknown paths still 404 without a token.
	protected := func(prefix string) fiber.Router {
		return app.Group(prefix, cfg.AuthMiddleware.Handle)
	}

	users := protected("/users")
	users.Get("/agents", cfg.Auth.Agents)

	calls := protected("/calls")
	calls.Get("/", cfg.Calls.ListCalls)
	calls.Post("/", cfg.Calls.CreateCall)
	calls.Get("/:id", cfg.Calls.GetCall)
	calls.Put("/:id", cfg.Calls.UpdateCall)
	calls.Delete("/:id", cfg.Calls.DeleteCall)

	tickets := protected("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Put("/:id/comments/:commentId", cfg.Tickets.EditComment)
	tickets.Delete("/:id/comments/:commentId", cfg.Tickets.DeleteComment)

	notifications := protected("/notifications")
	notifications.Get("/", cfg.Notifications.List)
	notifications.Put("/", cfg.Notifications.MarkAllRead)
	notifications.Delete("/", cfg.Notifications.DeleteAll)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Put("/:id", cfg.Notifications.MarkRead)
	notifications.Post("/:id", cfg.Notifications.MarkRead)
	notifications.Delete("/:id", cfg.Notifications.Delete)

	dashboard := protected("/dashboard")
	dashboard.Get("/overview", cfg.Dashboard.Overview)

	reports := protected("/reports")
	reports.Get("/calls.xlsx", auth.RequireSupervisor(), cfg.Dashboard.CallsReport)
}
