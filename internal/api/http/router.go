package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Assets         *handlers.AssetsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Each protected route declares its
// authentication policy explicitly: privileged operations (listing all
// tickets, resolving) re-confirm the caller's role against the identity
// store instead of trusting the token claim.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	claim := cfg.AuthMiddleware.Handle(auth.Policy{})
	fresh := cfg.AuthMiddleware.Handle(auth.Policy{FreshIdentity: true})

	tickets := app.Group("/tickets")
	tickets.Post("/", claim, cfg.Tickets.Create)
	tickets.Get("/", fresh, cfg.Tickets.ListAll)
	tickets.Get("/:id", claim, cfg.Tickets.GetByID)
	tickets.Patch("/:id", fresh, cfg.Tickets.Resolve)
	tickets.Post("/:id/close", fresh, cfg.Tickets.Resolve)

	assets := app.Group("/assets")
	assets.Post("/", claim, cfg.Assets.Register)
	assets.Get("/", claim, cfg.Assets.ListOwn)
	assets.Get("/:id/tickets", fresh, cfg.Tickets.ListByAsset)
}
