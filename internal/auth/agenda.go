package auth

import "github.com/spec-kit/clinic-dashboard/internal/domain"

// AgendaScope returns the employee id the agenda must be filtered by. Only a plain
// physiotherapist is restricted to their own appointments; holding the coordinator
// role lifts the restriction.
func AgendaScope(claims *domain.Claims) (string, bool) {
	if claims == nil || claims.EmployeeID == "" {
		return "", false
	}
	if !claims.HasRole(domain.RolePhysiotherapist) || claims.HasRole(domain.RolePhysiotherapistCoordinator) {
		return "", false
	}
	return claims.EmployeeID, true
}
