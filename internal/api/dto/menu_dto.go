package dto

import "github.com/spec-kit/clinic-dashboard/internal/domain"

// MenuEntry is a navigation entry as sent to the dashboard.
type MenuEntry struct {
	Name     string      `json:"name"`
	Path     string      `json:"path,omitempty"`
	Children []MenuEntry `json:"children,omitempty"`
}

// NewMenu maps a filtered navigation tree.
func NewMenu(entries []domain.NavigationEntry) []MenuEntry {
	out := make([]MenuEntry, 0, len(entries))
	for _, entry := range entries {
		item := MenuEntry{Name: entry.Name, Path: entry.Path}
		if entry.HasChildren() {
			item.Children = NewMenu(entry.Children)
		}
		out = append(out, item)
	}
	return out
}
