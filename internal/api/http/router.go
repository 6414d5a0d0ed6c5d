package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/clinic-dashboard/internal/auth"
	"github.com/spec-kit/clinic-dashboard/internal/domain"
	"github.com/spec-kit/clinic-dashboard/internal/registry"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Session    *handlers.SessionHandler
	Navigation *handlers.NavigationHandler
	Agenda     *handlers.AgendaHandler
	Gate       *auth.Gate
	Registry   *registry.Registry
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	gateCfg := cfg.Gate.Config()

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Gate.Protect(""), auth.RequireRoles(domain.RoleAdministrator), cfg.Health.Metrics)

	app.Get(gateCfg.SignInPath, cfg.Session.SignInPage)
	app.Post(gateCfg.SignInPath, cfg.Session.SignIn)
	app.Post("/signout", cfg.Session.SignOut)
	app.Get(gateCfg.DeniedPath, cfg.Session.AccessDenied)

	api := app.Group("/api")
	api.Get("/session", cfg.Session.Current)
	api.Get("/routes/check", cfg.Navigation.CheckRoute)
	api.Get("/menu", cfg.Gate.Protect(""), cfg.Navigation.Menu)
	api.Get("/agenda/scope", cfg.Gate.Protect("agenda"), cfg.Agenda.Scope)

	for _, route := range cfg.Registry.Routes() {
		app.Get(route.Path, cfg.Gate.ProtectPath(), cfg.Navigation.View)
	}
}
