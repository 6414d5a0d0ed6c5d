package domain

import "sort"

// Role identifies a principal's authorization category. Roles are assigned by the
// backend when it issues a token.
type Role string

const (
	RoleAdministrator              Role = "Administrator"
	RoleAdministrative             Role = "Administrative"
	RoleCommercial                 Role = "Commercial"
	RolePhysiotherapist            Role = "Physiotherapist"
	RolePhysiotherapistCoordinator Role = "PhysiotherapistCoordinator"
	RoleEmployee                   Role = "Employee"
	RoleFinancial                  Role = "Financial"
	RoleCustomer                   Role = "Customer"
)

var knownRoles = map[Role]struct{}{
	RoleAdministrator:              {},
	RoleAdministrative:             {},
	RoleCommercial:                 {},
	RolePhysiotherapist:            {},
	RolePhysiotherapistCoordinator: {},
	RoleEmployee:                   {},
	RoleFinancial:                  {},
	RoleCustomer:                   {},
}

// AllRoles returns every known role in a stable order.
func AllRoles() []Role {
	return []Role{
		RoleAdministrator,
		RoleAdministrative,
		RoleCommercial,
		RolePhysiotherapist,
		RolePhysiotherapistCoordinator,
		RoleEmployee,
		RoleFinancial,
		RoleCustomer,
	}
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// ParseRole maps a raw claim value onto a known role.
func ParseRole(raw string) (Role, bool) {
	r := Role(raw)
	return r, r.Valid()
}

// PermissionSet is the unordered set of roles allowed to reach a resource.
type PermissionSet struct {
	roles map[Role]struct{}
}

// NewPermissionSet builds a set from the given roles, ignoring duplicates.
func NewPermissionSet(roles ...Role) PermissionSet {
	set := PermissionSet{roles: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		set.roles[r] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (p PermissionSet) Contains(r Role) bool {
	_, ok := p.roles[r]
	return ok
}

// Len returns the number of distinct roles.
func (p PermissionSet) Len() int {
	return len(p.roles)
}

// Roles returns the members sorted by name.
func (p PermissionSet) Roles() []Role {
	out := make([]Role, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether both sets hold the same roles.
func (p PermissionSet) Equal(other PermissionSet) bool {
	if p.Len() != other.Len() {
		return false
	}
	for r := range p.roles {
		if !other.Contains(r) {
			return false
		}
	}
	return true
}
