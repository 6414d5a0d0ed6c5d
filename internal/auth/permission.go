package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
	apperrors "github.com/spec-kit/clinic-dashboard/pkg/util/errorutil"
)

// HasPermission reports whether any of roles belongs to required. A caller holding
// no role never qualifies, whatever the requirement.
func HasPermission(roles []domain.Role, required domain.PermissionSet) bool {
	for _, r := range roles {
		if required.Contains(r) {
			return true
		}
	}
	return false
}

// HasPermissionFor evaluates the roles carried by decoded claims.
func HasPermissionFor(claims *domain.Claims, required domain.PermissionSet) bool {
	if claims == nil {
		return false
	}
	return HasPermission(claims.Roles, required)
}

// UndeclaredPolicy decides access to resources that declare no PermissionSet.
type UndeclaredPolicy string

const (
	// UndeclaredAllow lets any authenticated caller through.
	UndeclaredAllow UndeclaredPolicy = "allow"
	// UndeclaredDeny requires every protected resource to declare its roles.
	UndeclaredDeny UndeclaredPolicy = "deny"
)

// ParseUndeclaredPolicy falls back to UndeclaredAllow for unknown values.
func ParseUndeclaredPolicy(raw string) UndeclaredPolicy {
	if UndeclaredPolicy(raw) == UndeclaredDeny {
		return UndeclaredDeny
	}
	return UndeclaredAllow
}

// permits applies the undeclared policy around HasPermission.
func (p UndeclaredPolicy) permits(roles []domain.Role, required *domain.PermissionSet) bool {
	if required == nil {
		return p != UndeclaredDeny
	}
	return HasPermission(roles, *required)
}

// RequireRoles ensures the gated caller holds one of the allowed roles.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	required := domain.NewPermissionSet(allowed...)

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(ErrUnauthenticated.Error())
		}
		if !HasPermissionFor(claims, required) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
