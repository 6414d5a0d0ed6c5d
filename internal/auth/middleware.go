package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
	apperrors "github.com/spec-kit/clinic-dashboard/pkg/util/errorutil"
)

const claimsKey = "auth_claims"

// Protect gates a handler on the PermissionSet of resource. An empty resource
// name leaves the handler undeclared.
func (g *Gate) Protect(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store := g.sessions.StoreFor(c)
		return g.respond(c, g.AuthorizeResource(c.UserContext(), store, resource))
	}
}

// ProtectPath gates a handler on the resource bound to the route being served.
func (g *Gate) ProtectPath() fiber.Handler {
	return func(c *fiber.Ctx) error {
		store := g.sessions.StoreFor(c)
		return g.respond(c, g.AuthorizePath(c.UserContext(), store, c.Route().Path))
	}
}

// respond never lets the next handler run unless the decision allows it.
func (g *Gate) respond(c *fiber.Ctx, d Decision) error {
	c.Set(fiber.HeaderCacheControl, "no-store")

	switch d.Outcome {
	case domain.OutcomeAllow:
		c.Locals(claimsKey, d.Claims)
		return c.Next()
	case domain.OutcomeRedirectDenied:
		if wantsJSON(c) {
			return apperrors.NewDomainError("FORBIDDEN", ErrPermissionDenied.Error(), fiber.StatusForbidden,
				map[string]any{"redirect": d.Redirect})
		}
		return c.Redirect(d.Redirect, fiber.StatusSeeOther)
	default:
		if wantsJSON(c) {
			return apperrors.NewDomainError("UNAUTHORIZED", ErrUnauthenticated.Error(), fiber.StatusUnauthorized,
				map[string]any{"redirect": d.Redirect})
		}
		return c.Redirect(d.Redirect, fiber.StatusSeeOther)
	}
}

func wantsJSON(c *fiber.Ctx) bool {
	if strings.HasPrefix(c.Path(), "/api/") {
		return true
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// ClaimsFromContext retrieves the claims of a request the gate allowed.
func ClaimsFromContext(c *fiber.Ctx) (*domain.Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*domain.Claims)
	return claims, ok && claims != nil
}
