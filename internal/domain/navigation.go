package domain

// NavigationEntry is a node of the dashboard menu tree.
type NavigationEntry struct {
	Name       string
	Path       string
	Resource   string
	Permission *PermissionSet
	Children   []NavigationEntry
}

// HasChildren reports whether the entry groups other entries.
func (n NavigationEntry) HasChildren() bool {
	return len(n.Children) > 0
}

// Clone returns a deep copy of the entry.
func (n NavigationEntry) Clone() NavigationEntry {
	out := n
	if n.Permission != nil {
		perm := NewPermissionSet(n.Permission.Roles()...)
		out.Permission = &perm
	}
	if n.Children != nil {
		out.Children = make([]NavigationEntry, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}
