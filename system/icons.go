package system

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"resultflow/items"
)

// IconResolver maps icon handles to something a view can load. Remote icons
// pass through, local paths are looked up relative to Dirs, and anything
// unresolvable becomes Default.
type IconResolver struct {
	Default items.Icon
	Dirs    []string
}

func (r *IconResolver) Resolve(icon items.Icon) items.Icon {
	if icon.IsZero() {
		return r.Default
	}
	path := strings.TrimSpace(icon.Path)

	if u, err := url.Parse(path); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return items.Icon{Path: path}
	}

	if filepath.IsAbs(path) {
		if fileExists(path) {
			return items.Icon{Path: path}
		}
		return r.Default
	}
	for _, dir := range r.Dirs {
		candidate := filepath.Join(dir, path)
		if fileExists(candidate) {
			return items.Icon{Path: candidate}
		}
	}
	return r.Default
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
