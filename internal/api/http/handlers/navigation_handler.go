package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-dashboard/internal/api/dto"
	"github.com/spec-kit/clinic-dashboard/internal/auth"
	"github.com/spec-kit/clinic-dashboard/internal/registry"
	"github.com/spec-kit/clinic-dashboard/internal/session"
	apperrors "github.com/spec-kit/clinic-dashboard/pkg/util/errorutil"
)

// NavigationHandler serves the menu, the protected views and route pre-checks.
type NavigationHandler struct {
	menus    *auth.MenuCache
	gate     *auth.Gate
	registry *registry.Registry
	sessions session.Provider
}

// NewNavigationHandler constructs handler.
func NewNavigationHandler(menus *auth.MenuCache, gate *auth.Gate, reg *registry.Registry, sessions session.Provider) *NavigationHandler {
	return &NavigationHandler{menus: menus, gate: gate, registry: reg, sessions: sessions}
}

// Menu handles GET /api/menu.
func (h *NavigationHandler) Menu(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error())
	}
	return c.JSON(fiber.Map{"data": dto.NewMenu(h.menus.For(claims.Roles))})
}

// View renders the descriptor of a protected dashboard view.
func (h *NavigationHandler) View(c *fiber.Ctx) error {
	path := c.Route().Path
	resource, _ := h.registry.RouteFor(path)
	return c.JSON(fiber.Map{"data": fiber.Map{
		"view":     path,
		"resource": resource,
	}})
}

// CheckRoute handles GET /api/routes/check?path=... and reports what the gate
// would do for a navigation to path.
func (h *NavigationHandler) CheckRoute(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return apperrors.NewValidationError("path is required", nil)
	}
	resource, ok := h.registry.RouteFor(path)
	if !ok {
		return apperrors.NewNotFound("route", map[string]any{"path": path})
	}

	store := h.sessions.StoreFor(c)
	decision := h.gate.AuthorizeResource(c.UserContext(), store, resource)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.RouteCheckResponse{
		Path:     path,
		Resource: resource,
		Outcome:  string(decision.Outcome),
		Redirect: decision.Redirect,
	}})
}
