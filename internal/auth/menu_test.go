package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
	"github.com/spec-kit/clinic-dashboard/internal/registry"
	"github.com/spec-kit/clinic-dashboard/internal/session"
)

func permission(roles ...domain.Role) *domain.PermissionSet {
	set := domain.NewPermissionSet(roles...)
	return &set
}

func names(entries []domain.NavigationEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func leafPaths(entries []domain.NavigationEntry) []string {
	var out []string
	for _, e := range entries {
		if e.HasChildren() {
			out = append(out, leafPaths(e.Children)...)
			continue
		}
		out = append(out, e.Path)
	}
	return out
}

func defaultNavigation(t *testing.T) []domain.NavigationEntry {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return reg.Navigation()
}

func TestFilterMenu_AdministratorSeesUnits(t *testing.T) {
	entries := []domain.NavigationEntry{
		{Name: "Unidades", Path: "/unidades", Permission: permission(domain.RoleAdministrator, domain.RoleAdministrative)},
	}

	got := FilterMenu(entries, []domain.Role{domain.RoleAdministrator})
	require.Len(t, got, 1)
	assert.Equal(t, "Unidades", got[0].Name)
	assert.Equal(t, "/unidades", got[0].Path)
}

func TestFilterMenu_Rules(t *testing.T) {
	admin := permission(domain.RoleAdministrator)
	entries := []domain.NavigationEntry{
		{Name: "Open", Path: "/open"},
		{Name: "AdminOnly", Path: "/admin", Permission: admin},
		{Name: "NoPath"},
		{Name: "EmptyGroup", Permission: permission(domain.RoleEmployee), Children: []domain.NavigationEntry{
			{Name: "Hidden", Path: "/hidden", Permission: admin},
		}},
		{Name: "ClosedGroup", Permission: admin, Children: []domain.NavigationEntry{
			{Name: "Visible", Path: "/visible"},
		}},
		{Name: "Group", Children: []domain.NavigationEntry{
			{Name: "Mine", Path: "/mine", Permission: permission(domain.RoleEmployee)},
			{Name: "Theirs", Path: "/theirs", Permission: admin},
		}},
	}

	got := FilterMenu(entries, []domain.Role{domain.RoleEmployee})
	assert.Equal(t, []string{"Open", "Group"}, names(got))
	require.Len(t, got[1].Children, 1)
	assert.Equal(t, "Mine", got[1].Children[0].Name)

	assert.Empty(t, FilterMenu(entries[1:2], nil))
	assert.Empty(t, FilterMenu(nil, []domain.Role{domain.RoleAdministrator}))
}

func TestFilterMenu_UndeclaredDeny(t *testing.T) {
	entries := []domain.NavigationEntry{
		{Name: "Open", Path: "/open"},
		{Name: "Declared", Path: "/declared", Permission: permission(domain.RoleEmployee)},
	}
	got := MenuFilter{Undeclared: UndeclaredDeny}.Filter(entries, []domain.Role{domain.RoleEmployee})
	assert.Equal(t, []string{"Declared"}, names(got))
}

func TestFilterMenu_DeepNesting(t *testing.T) {
	entries := []domain.NavigationEntry{
		{Name: "L1", Children: []domain.NavigationEntry{
			{Name: "L2", Children: []domain.NavigationEntry{
				{Name: "L3", Children: []domain.NavigationEntry{
					{Name: "Deny", Path: "/deny", Permission: permission(domain.RoleFinancial)},
				}},
			}},
			{Name: "Leaf", Path: "/leaf", Permission: permission(domain.RoleCommercial)},
		}},
	}

	got := FilterMenu(entries, []domain.Role{domain.RoleCommercial})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Leaf"}, names(got[0].Children))

	got = FilterMenu(entries, []domain.Role{domain.RoleFinancial})
	assert.Equal(t, []string{"/deny"}, leafPaths(got))
}

func TestFilterMenu_ParentVisibilityForEveryRole(t *testing.T) {
	nav := defaultNavigation(t)

	var check func(t *testing.T, entries []domain.NavigationEntry, roles []domain.Role)
	check = func(t *testing.T, entries []domain.NavigationEntry, roles []domain.Role) {
		for _, e := range entries {
			if e.Permission != nil {
				assert.True(t, HasPermission(roles, *e.Permission), e.Name)
			}
			if e.HasChildren() {
				check(t, e.Children, roles)
			} else {
				assert.NotEmpty(t, e.Path, e.Name)
			}
		}
	}

	for _, role := range domain.AllRoles() {
		t.Run(string(role), func(t *testing.T) {
			roles := []domain.Role{role}
			got := FilterMenu(nav, roles)
			check(t, got, roles)
			for _, e := range got {
				if e.Path == "" {
					assert.NotEmpty(t, e.Children, e.Name)
				}
			}
		})
	}
}

func TestFilterMenu_Idempotent(t *testing.T) {
	nav := defaultNavigation(t)
	for _, role := range domain.AllRoles() {
		roles := []domain.Role{role}
		once := FilterMenu(nav, roles)
		assert.Equal(t, once, FilterMenu(once, roles), role)
	}
}

func TestFilterMenu_StableAndPure(t *testing.T) {
	nav := defaultNavigation(t)
	before := defaultNavigation(t)

	got := FilterMenu(nav, []domain.Role{domain.RoleAdministrator})
	assert.Equal(t, before, nav)

	// Administrator appears in every set except customer.appointments.
	want := []string{"Dashboard", "Agenda", "Funcionários", "Unidades", "Clientes", "Financeiro", "Notificações", "WhatsApp"}
	assert.Equal(t, want, names(got))

	got[0].Children[0].Name = "changed"
	got[0].Permission = permission(domain.RoleCustomer)
	assert.Equal(t, before, nav)
}

func TestFilterMenu_EmployeesSection(t *testing.T) {
	nav := defaultNavigation(t)

	for _, role := range []domain.Role{domain.RolePhysiotherapist, domain.RolePhysiotherapistCoordinator} {
		paths := leafPaths(FilterMenu(nav, []domain.Role{role}))
		assert.Contains(t, paths, "/funcionarios", role)
		assert.NotContains(t, paths, "/funcionarios/form", role)
		assert.NotContains(t, paths, "/unidades", role)
	}

	paths := leafPaths(FilterMenu(nav, []domain.Role{domain.RoleCustomer}))
	assert.Equal(t, []string{"/minhas-consultas"}, paths)
}

func TestFilterMenu_VisibleLinksPassTheGate(t *testing.T) {
	nav := defaultNavigation(t)
	gate, _ := newTestGate(t, UndeclaredAllow)

	for _, role := range domain.AllRoles() {
		t.Run(string(role), func(t *testing.T) {
			store := session.NewMemoryStore(tokenFor(t, string(role)))
			for _, path := range leafPaths(FilterMenu(nav, []domain.Role{role})) {
				d := gate.AuthorizePath(context.Background(), store, path)
				assert.Equal(t, domain.OutcomeAllow, d.Outcome, path)
			}
		})
	}
}

func TestMenuCache(t *testing.T) {
	nav := defaultNavigation(t)
	cache := NewMenuCache(nav, MenuFilter{})

	for _, role := range domain.AllRoles() {
		roles := []domain.Role{role}
		assert.Equal(t, FilterMenu(nav, roles), cache.For(roles), role)
	}

	a := cache.For([]domain.Role{domain.RoleFinancial, domain.RoleCommercial})
	b := cache.For([]domain.Role{domain.RoleCommercial, domain.RoleFinancial, domain.RoleCommercial})
	assert.Equal(t, a, b)

	a[0].Name = "mutated"
	c := cache.For([]domain.Role{domain.RoleCommercial, domain.RoleFinancial})
	assert.NotEqual(t, "mutated", c[0].Name)
}

func TestMenuCache_Concurrent(t *testing.T) {
	cache := NewMenuCache(defaultNavigation(t), MenuFilter{})
	roles := domain.AllRoles()

	done := make(chan struct{})
	for i := 0; i < 16; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			cache.For([]domain.Role{roles[i%len(roles)]})
		}(i)
	}
	for i := 0; i < 16; i++ {
		<-done
	}

	for _, role := range roles {
		assert.Equal(t, FilterMenu(cache.entries, []domain.Role{role}), cache.For([]domain.Role{role}), fmt.Sprint(role))
	}
}
