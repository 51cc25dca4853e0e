// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package scanner discovers endpoint route modules under an API directory.
package scanner

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// RouteModuleSuffix is the file suffix of an endpoint's route module.
const RouteModuleSuffix = ".routes.ts"

// RouteModule is a discovered `<name>.routes.ts` file.
type RouteModule struct {
	// Path is the absolute path to the file
	Path string

	// RelPath is the slash-separated path relative to the scan root
	RelPath string

	// Name is the endpoint name, the file name without ".routes.ts"
	Name string

	// ModTime is the last modification time
	ModTime time.Time
}

// ImportPath returns the specifier a router file in routerDir uses to import
// the module: relative, "./"-prefixed, with the ".ts" extension mapped to ".js".
func (m RouteModule) ImportPath(routerDir string) string {
	rel, err := filepath.Rel(routerDir, m.Path)
	if err != nil {
		rel = m.RelPath
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, ".ts") + ".js"
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// IsRouteModule reports whether p names a route module.
func IsRouteModule(p string) bool {
	base := filepath.Base(p)
	return strings.HasSuffix(base, RouteModuleSuffix) && len(base) > len(RouteModuleSuffix)
}

// ModuleName returns the endpoint name of a route module path.
func ModuleName(p string) string {
	return strings.TrimSuffix(filepath.Base(p), RouteModuleSuffix)
}

// SourcePath maps a route module import specifier such as
// "./users/users.routes.js" back to its TypeScript source path relative to
// the importing directory. ok is false for bare or non-route specifiers.
func SourcePath(specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", false
	}
	clean := path.Clean(specifier)
	switch {
	case strings.HasSuffix(clean, ".routes.js"):
		clean = strings.TrimSuffix(clean, ".js") + ".ts"
	case strings.HasSuffix(clean, ".routes"):
		clean += ".ts"
	case strings.HasSuffix(clean, RouteModuleSuffix):
	default:
		return "", false
	}
	return filepath.FromSlash(clean), true
}
