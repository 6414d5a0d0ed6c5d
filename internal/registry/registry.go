// Package registry holds the static table mapping dashboard resources, menu entries
// and routes to the roles allowed to reach them.
package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

//go:embed default.yaml
var defaultDocument []byte

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid registry")

// Route binds a protected path to a resource. An empty Resource is undeclared.
type Route struct {
	Path     string
	Resource string
}

// Registry is immutable once loaded.
type Registry struct {
	resources  map[string]domain.PermissionSet
	navigation []domain.NavigationEntry
	routes     map[string]string
	routeOrder []string
	doc        document
}

type document struct {
	Resources  map[string][]string `yaml:"resources"`
	Navigation []navNode           `yaml:"navigation"`
	Routes     []routeNode         `yaml:"routes"`
}

type navNode struct {
	Name     string    `yaml:"name"`
	Path     string    `yaml:"path"`
	Resource string    `yaml:"resource"`
	Children []navNode `yaml:"children"`
}

type routeNode struct {
	Path     string `yaml:"path"`
	Resource string `yaml:"resource"`
}

// Default returns the embedded registry.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultDocument))
}

// LoadFile reads a registry document from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a registry document.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	return build(doc)
}

func build(doc document) (*Registry, error) {
	reg := &Registry{
		resources: make(map[string]domain.PermissionSet, len(doc.Resources)),
		routes:    make(map[string]string),
		doc:       doc,
	}

	for key, names := range doc.Resources {
		if key == "" {
			return nil, fmt.Errorf("%w: empty resource key", ErrInvalid)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: resource %q declares no roles", ErrInvalid, key)
		}
		roles := make([]domain.Role, 0, len(names))
		for _, name := range names {
			role, ok := domain.ParseRole(name)
			if !ok {
				return nil, fmt.Errorf("%w: resource %q: unknown role %q", ErrInvalid, key, name)
			}
			roles = append(roles, role)
		}
		reg.resources[key] = domain.NewPermissionSet(roles...)
	}

	nav, err := reg.buildNavigation(doc.Navigation, "")
	if err != nil {
		return nil, err
	}
	reg.navigation = nav

	for _, rt := range doc.Routes {
		if rt.Path == "" {
			return nil, fmt.Errorf("%w: route without path", ErrInvalid)
		}
		if rt.Resource != "" {
			if _, ok := reg.resources[rt.Resource]; !ok {
				return nil, fmt.Errorf("%w: route %q: unknown resource %q", ErrInvalid, rt.Path, rt.Resource)
			}
		}
		if _, dup := reg.routes[rt.Path]; dup {
			return nil, fmt.Errorf("%w: route %q declared twice", ErrInvalid, rt.Path)
		}
		reg.bind(rt.Path, rt.Resource)
	}

	return reg, nil
}

func (r *Registry) buildNavigation(nodes []navNode, parent string) ([]domain.NavigationEntry, error) {
	entries := make([]domain.NavigationEntry, 0, len(nodes))
	for _, node := range nodes {
		where := parent + "/" + node.Name
		if node.Name == "" {
			return nil, fmt.Errorf("%w: navigation entry under %q has no name", ErrInvalid, parent)
		}
		if node.Path == "" && len(node.Children) == 0 {
			return nil, fmt.Errorf("%w: navigation entry %q has neither path nor children", ErrInvalid, where)
		}

		entry := domain.NavigationEntry{Name: node.Name, Path: node.Path, Resource: node.Resource}
		if node.Resource != "" {
			set, ok := r.resources[node.Resource]
			if !ok {
				return nil, fmt.Errorf("%w: navigation entry %q: unknown resource %q", ErrInvalid, where, node.Resource)
			}
			entry.Permission = &set
		}

		if node.Path != "" {
			if bound, dup := r.routes[node.Path]; dup && bound != node.Resource {
				return nil, fmt.Errorf("%w: path %q bound to %q and %q", ErrInvalid, node.Path, bound, node.Resource)
			} else if !dup {
				r.bind(node.Path, node.Resource)
			}
		}

		if len(node.Children) > 0 {
			children, err := r.buildNavigation(node.Children, where)
			if err != nil {
				return nil, err
			}
			entry.Children = children
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Registry) bind(path, resource string) {
	r.routes[path] = resource
	r.routeOrder = append(r.routeOrder, path)
}

// Resource returns the PermissionSet of a resource key.
func (r *Registry) Resource(key string) (domain.PermissionSet, bool) {
	set, ok := r.resources[key]
	return set, ok
}

// Resources returns every resource key, sorted.
func (r *Registry) Resources() []string {
	keys := make([]string, 0, len(r.resources))
	for k := range r.resources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RouteFor returns the resource bound to a route path.
func (r *Registry) RouteFor(path string) (string, bool) {
	resource, ok := r.routes[path]
	return resource, ok
}

// Routes returns every protected route in declaration order.
func (r *Registry) Routes() []Route {
	out := make([]Route, 0, len(r.routeOrder))
	for _, path := range r.routeOrder {
		out = append(out, Route{Path: path, Resource: r.routes[path]})
	}
	return out
}

// Navigation returns a deep copy of the menu tree.
func (r *Registry) Navigation() []domain.NavigationEntry {
	out := make([]domain.NavigationEntry, len(r.navigation))
	for i, entry := range r.navigation {
		out[i] = entry.Clone()
	}
	return out
}

// WithPermissions returns a registry whose resources take the given role sets.
// Every key must already be declared.
func (r *Registry) WithPermissions(overrides map[string][]domain.Role) (*Registry, error) {
	doc := r.doc
	doc.Resources = make(map[string][]string, len(r.doc.Resources))
	for k, v := range r.doc.Resources {
		doc.Resources[k] = append([]string(nil), v...)
	}
	for key, roles := range overrides {
		if _, ok := doc.Resources[key]; !ok {
			return nil, fmt.Errorf("%w: override for unknown resource %q", ErrInvalid, key)
		}
		names := make([]string, len(roles))
		for i, role := range roles {
			names[i] = string(role)
		}
		doc.Resources[key] = names
	}
	return build(doc)
}
