package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

func TestDefault_IsValid(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	keys := reg.Resources()
	require.NotEmpty(t, keys)
	assert.IsIncreasing(t, keys)

	for _, key := range keys {
		set, ok := reg.Resource(key)
		require.True(t, ok, key)
		assert.Positive(t, set.Len(), key)
		for _, role := range set.Roles() {
			assert.True(t, role.Valid(), "%s: %s", key, role)
		}
	}
}

func TestDefault_Policy(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	employees, _ := reg.Resource("employees")
	form, _ := reg.Resource("employees.form")
	for _, role := range []domain.Role{domain.RolePhysiotherapist, domain.RolePhysiotherapistCoordinator} {
		assert.True(t, employees.Contains(role), role)
		assert.False(t, form.Contains(role), role)
	}

	units, _ := reg.Resource("units")
	assert.True(t, units.Equal(domain.NewPermissionSet(domain.RoleAdministrator, domain.RoleAdministrative)))

	financial, _ := reg.Resource("dashboard.financial")
	operations, _ := reg.Resource("dashboard.operations")
	lead, _ := reg.Resource("dashboard.lead")
	assert.False(t, financial.Equal(operations))
	assert.False(t, financial.Equal(lead))
	assert.False(t, operations.Equal(lead))
	for _, set := range []domain.PermissionSet{financial, operations, lead} {
		assert.True(t, set.Contains(domain.RoleAdministrator))
	}
}

func TestDefault_Routes(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	resource, ok := reg.RouteFor("/unidades")
	assert.True(t, ok)
	assert.Equal(t, "units", resource)

	resource, ok = reg.RouteFor("/funcionarios/editar")
	assert.True(t, ok)
	assert.Equal(t, "employees.form", resource)

	resource, ok = reg.RouteFor("/perfil")
	assert.True(t, ok)
	assert.Empty(t, resource)

	_, ok = reg.RouteFor("/nowhere")
	assert.False(t, ok)

	routes := reg.Routes()
	require.NotEmpty(t, routes)
	assert.Equal(t, Route{Path: "/dashboard/financeiro", Resource: "dashboard.financial"}, routes[0])
	assert.Equal(t, Route{Path: "/perfil"}, routes[len(routes)-1])

	seen := map[string]bool{}
	for _, rt := range routes {
		assert.False(t, seen[rt.Path], rt.Path)
		seen[rt.Path] = true
	}
}

func TestNavigation_ReturnsCopies(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	nav := reg.Navigation()
	require.NotEmpty(t, nav)
	require.NotEmpty(t, nav[0].Children)
	nav[0].Name = "changed"
	nav[0].Children[0].Path = "/changed"

	fresh := reg.Navigation()
	assert.Equal(t, "Dashboard", fresh[0].Name)
	assert.Equal(t, "/dashboard/financeiro", fresh[0].Children[0].Path)
	require.NotNil(t, fresh[0].Children[0].Permission)
	assert.True(t, fresh[0].Children[0].Permission.Contains(domain.RoleFinancial))
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "empty role set",
			doc:  "resources:\n  units: []\n",
		},
		{
			name: "unknown role",
			doc:  "resources:\n  units: [Janitor]\n",
		},
		{
			name: "unknown field",
			doc:  "resources:\n  units: [Administrator]\npolicy: open\n",
		},
		{
			name: "navigation references unknown resource",
			doc:  "resources:\n  units: [Administrator]\nnavigation:\n  - name: X\n    path: /x\n    resource: nope\n",
		},
		{
			name: "navigation entry without path or children",
			doc:  "resources:\n  units: [Administrator]\nnavigation:\n  - name: X\n    resource: units\n",
		},
		{
			name: "navigation entry without name",
			doc:  "resources:\n  units: [Administrator]\nnavigation:\n  - path: /x\n",
		},
		{
			name: "path bound twice",
			doc: "resources:\n  units: [Administrator]\n  agenda: [Employee]\nnavigation:\n" +
				"  - name: A\n    path: /x\n    resource: units\n  - name: B\n    path: /x\n    resource: agenda\n",
		},
		{
			name: "route duplicates menu path",
			doc: "resources:\n  units: [Administrator]\nnavigation:\n  - name: A\n    path: /x\n    resource: units\n" +
				"routes:\n  - path: /x\n    resource: units\n",
		},
		{
			name: "route without path",
			doc:  "resources:\n  units: [Administrator]\nroutes:\n  - resource: units\n",
		},
		{
			name: "route references unknown resource",
			doc:  "resources:\n  units: [Administrator]\nroutes:\n  - path: /x\n    resource: nope\n",
		},
		{
			name: "not yaml",
			doc:  "resources: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_SharedPathSameResource(t *testing.T) {
	doc := "resources:\n  employees: [Administrator]\nnavigation:\n" +
		"  - name: Group\n    path: /funcionarios\n    resource: employees\n    children:\n" +
		"      - name: List\n        path: /funcionarios\n        resource: employees\n"
	reg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, reg.Routes(), 1)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	doc := "resources:\n  units: [Administrator]\nnavigation:\n  - name: Unidades\n    path: /unidades\n    resource: units\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"units"}, reg.Resources())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWithPermissions(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	updated, err := reg.WithPermissions(map[string][]domain.Role{
		"units": {domain.RoleAdministrator},
	})
	require.NoError(t, err)

	units, _ := updated.Resource("units")
	assert.True(t, units.Equal(domain.NewPermissionSet(domain.RoleAdministrator)))

	original, _ := reg.Resource("units")
	assert.True(t, original.Contains(domain.RoleAdministrative))

	nav := updated.Navigation()
	for _, e := range nav {
		if e.Name == "Unidades" {
			assert.False(t, e.Permission.Contains(domain.RoleAdministrative))
		}
	}

	_, err = reg.WithPermissions(map[string][]domain.Role{"nope": {domain.RoleAdministrator}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = reg.WithPermissions(map[string][]domain.Role{"units": {"Janitor"}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = reg.WithPermissions(map[string][]domain.Role{"units": {}})
	assert.ErrorIs(t, err, ErrInvalid)
}

type fakeRows struct {
	pgx.Rows
	data [][2]string
	pos  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     {}

type fakeQuerier struct {
	rows *fakeRows
	err  error
	sql  string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.sql = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestApplyPostgres(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	q := &fakeQuerier{rows: &fakeRows{data: [][2]string{
		{"units", "Administrator"},
		{"whatsapp.leads", "Administrative"},
		{"whatsapp.leads", "Commercial"},
	}}}
	updated, err := ApplyPostgres(context.Background(), reg, q)
	require.NoError(t, err)
	assert.Contains(t, q.sql, "resource_permissions")

	units, _ := updated.Resource("units")
	assert.Equal(t, []domain.Role{domain.RoleAdministrator}, units.Roles())
	leads, _ := updated.Resource("whatsapp.leads")
	assert.Equal(t, []domain.Role{domain.RoleAdministrative, domain.RoleCommercial}, leads.Roles())
	agenda, _ := updated.Resource("agenda")
	original, _ := reg.Resource("agenda")
	assert.True(t, agenda.Equal(original))
}

func TestApplyPostgres_Empty(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	got, err := ApplyPostgres(context.Background(), reg, &fakeQuerier{rows: &fakeRows{}})
	require.NoError(t, err)
	assert.Same(t, reg, got)
}

func TestApplyPostgres_Errors(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = ApplyPostgres(context.Background(), reg, &fakeQuerier{err: boom})
	assert.ErrorIs(t, err, boom)

	_, err = ApplyPostgres(context.Background(), reg, &fakeQuerier{rows: &fakeRows{err: boom}})
	assert.ErrorIs(t, err, boom)

	_, err = ApplyPostgres(context.Background(), reg, &fakeQuerier{rows: &fakeRows{data: [][2]string{{"ghost", "Administrator"}}}})
	assert.ErrorIs(t, err, ErrInvalid)
}
