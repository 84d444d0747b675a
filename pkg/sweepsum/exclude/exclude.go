// Package exclude decides whether a filesystem path falls under one of a
// configured set of excluded roots.
//
// Matching is purely lexical: a path is excluded when it equals a root or
// begins with the root followed by the path separator. No symlink or ".."
// resolution is performed, so callers must supply paths exactly as the
// traversal produced them.
package exclude

import (
	"path/filepath"
	"strings"
)

// Matcher holds an ordered set of excluded roots.
// The zero value excludes nothing.
type Matcher struct {
	roots []string
}

// New returns a Matcher for the given roots. Empty entries are dropped and a
// trailing separator is trimmed from every root other than the filesystem
// root itself. Duplicate roots are collapsed, preserving first occurrence.
func New(roots ...string) *Matcher {
	m := &Matcher{roots: make([]string, 0, len(roots))}
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		root = normalize(root)
		if root == "" {
			continue
		}
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		m.roots = append(m.roots, root)
	}
	return m
}

// Roots returns a copy of the configured roots in order.
func (m *Matcher) Roots() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.roots))
	copy(out, m.roots)
	return out
}

// IsExcluded reports whether path equals a configured root or is nested
// under one. "/var" excludes "/var/log" but not "/variant".
func (m *Matcher) IsExcluded(path string) bool {
	if m == nil {
		return false
	}
	for _, root := range m.roots {
		if Under(path, root) {
			return true
		}
	}
	return false
}

// Under reports whether path is root or lexically nested below it.
func Under(path, root string) bool {
	if root == "" {
		return false
	}
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

func normalize(root string) string {
	if root == "" {
		return ""
	}
	trimmed := strings.TrimRight(root, string(filepath.Separator))
	if trimmed == "" {
		// The root was made only of separators, i.e. the filesystem root.
		return string(filepath.Separator)
	}
	return trimmed
}
