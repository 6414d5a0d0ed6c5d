package auth

import (
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/clinic-dashboard/internal/domain"
)

// FilterMenu returns the entries visible to roles under the fallback-allow policy.
func FilterMenu(entries []domain.NavigationEntry, roles []domain.Role) []domain.NavigationEntry {
	return MenuFilter{}.Filter(entries, roles)
}

// MenuFilter computes the role-appropriate subset of a navigation tree. It applies
// the same undeclared policy as the Gate so a visible link is never rejected.
type MenuFilter struct {
	Undeclared UndeclaredPolicy
}

// Filter keeps input order and never mutates entries. A parent survives only when
// its own check passes and at least one child survives; a leaf needs a path.
func (f MenuFilter) Filter(entries []domain.NavigationEntry, roles []domain.Role) []domain.NavigationEntry {
	out := make([]domain.NavigationEntry, 0, len(entries))
	for _, entry := range entries {
		if visible, ok := f.entry(entry, roles); ok {
			out = append(out, visible)
		}
	}
	return out
}

func (f MenuFilter) entry(entry domain.NavigationEntry, roles []domain.Role) (domain.NavigationEntry, bool) {
	if !f.Undeclared.permits(roles, entry.Permission) {
		return domain.NavigationEntry{}, false
	}

	if entry.HasChildren() {
		children := f.Filter(entry.Children, roles)
		if len(children) == 0 {
			return domain.NavigationEntry{}, false
		}
		parent := entry
		parent.Children = nil
		parent = parent.Clone()
		parent.Children = children
		return parent, true
	}

	if entry.Path == "" {
		return domain.NavigationEntry{}, false
	}
	return entry.Clone(), true
}

// MenuCache memoizes filtered menus per role set. The navigation tree is fixed
// for the cache's lifetime.
type MenuCache struct {
	filter  MenuFilter
	entries []domain.NavigationEntry

	mu    sync.RWMutex
	menus map[string][]domain.NavigationEntry
}

// NewMenuCache builds a cache over entries.
func NewMenuCache(entries []domain.NavigationEntry, filter MenuFilter) *MenuCache {
	return &MenuCache{filter: filter, entries: entries, menus: make(map[string][]domain.NavigationEntry)}
}

// For returns a private copy of the menu for roles.
func (m *MenuCache) For(roles []domain.Role) []domain.NavigationEntry {
	key := roleKey(roles)

	m.mu.RLock()
	menu, ok := m.menus[key]
	m.mu.RUnlock()

	if !ok {
		menu = m.filter.Filter(m.entries, roles)
		m.mu.Lock()
		m.menus[key] = menu
		m.mu.Unlock()
	}

	out := make([]domain.NavigationEntry, len(menu))
	for i, entry := range menu {
		out[i] = entry.Clone()
	}
	return out
}

func roleKey(roles []domain.Role) string {
	names := make([]string, 0, len(roles))
	seen := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		names = append(names, string(r))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
