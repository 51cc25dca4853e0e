// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package routesync compares the route modules on disk with the router
// aggregation file and reconciles the two.
package routesync

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
	"github.com/LOPIN6FARRIER/katax-cli/internal/routerupdate"
	"github.com/LOPIN6FARRIER/katax-cli/internal/scanner"
)

// Missing is a route module on disk that the router file does not mount.
type Missing struct {
	Module scanner.RouteModule

	// Request is what Fix passes to EnsureRoute. It reuses an existing
	// import binding when the module is imported but not mounted.
	Request routerupdate.Request

	// Imported is set when the module is already imported.
	Imported bool
}

// Orphan is a router import of a route module whose source no longer exists.
type Orphan struct {
	Binding    string
	ModulePath string
	RoutePaths []string
	Line       int
}

// Mounted is a route module that is imported and mounted.
type Mounted struct {
	Module    scanner.RouteModule
	Binding   string
	RoutePath string
	Line      int
}

// Report is the result of Check.
type Report struct {
	RouterFile string
	APIDir     string
	Mounted    []Mounted
	Missing    []Missing
	Orphaned   []Orphan
}

// InSync reports whether there is nothing to fix.
func (r *Report) InSync() bool {
	return len(r.Missing) == 0 && len(r.Orphaned) == 0
}

// FixResult lists what Fix changed.
type FixResult struct {
	Registered []string
	Removed    []string
	Skipped    []string
}

// Checker runs drift checks against one filesystem.
type Checker struct {
	fs      afero.Fs
	updater *routerupdate.Updater
	include []string
	exclude []string
}

// NewChecker returns a Checker over fs (the OS filesystem when nil) using
// the given scanner patterns.
func NewChecker(fs afero.Fs, include, exclude []string) *Checker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Checker{
		fs:      fs,
		updater: routerupdate.New(fs),
		include: include,
		exclude: exclude,
	}
}

type routerImport struct {
	binding    string
	modulePath string
	source     string
	line       int
}

// Check scans apiDir for route modules and compares them with routerFile.
func (c *Checker) Check(apiDir, routerFile string) (*Report, error) {
	doc, err := c.updater.Document(routerFile)
	if err != nil {
		return nil, err
	}

	modules, err := scanner.New(scanner.Config{
		BasePath:        apiDir,
		IncludePatterns: c.include,
		ExcludePatterns: c.exclude,
		Fs:              c.fs,
	}).Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", apiDir, err)
	}

	routerDir := filepath.Dir(routerFile)

	var imports []routerImport
	for _, imp := range doc.Imports() {
		if imp.BoundName == "" {
			continue
		}
		rel, ok := scanner.SourcePath(imp.ModulePath)
		if !ok {
			continue
		}
		imports = append(imports, routerImport{
			binding:    imp.BoundName,
			modulePath: imp.ModulePath,
			source:     filepath.Join(routerDir, rel),
			line:       imp.Line(),
		})
	}

	mounts := make(map[string][]*routerupdate.RouteRegistration)
	for _, reg := range doc.Registrations() {
		if reg.MethodName != "use" || !reg.MountIsIdentifier {
			continue
		}
		mounts[reg.MountArgument] = append(mounts[reg.MountArgument], reg)
	}

	report := &Report{RouterFile: routerFile, APIDir: apiDir}

	claimed := make(map[string]bool)
	for _, m := range modules {
		var found *routerImport
		for i := range imports {
			if filepath.Clean(imports[i].source) == filepath.Clean(m.Path) {
				found = &imports[i]
				break
			}
		}

		if found != nil {
			claimed[found.binding] = true
			if regs := mounts[found.binding]; len(regs) > 0 {
				report.Mounted = append(report.Mounted, Mounted{
					Module:    m,
					Binding:   found.binding,
					RoutePath: regs[0].Path,
					Line:      regs[0].Line(),
				})
				continue
			}
			report.Missing = append(report.Missing, Missing{
				Module: m,
				Request: routerupdate.Request{
					RouterBindingName: found.binding,
					ImportModulePath:  found.modulePath,
					RoutePath:         naming.RoutePath(m.Name),
				},
				Imported: true,
			})
			continue
		}

		req := routerupdate.NewRequest(m.Name, "")
		req.ImportModulePath = m.ImportPath(routerDir)
		report.Missing = append(report.Missing, Missing{Module: m, Request: req})
	}

	for _, imp := range imports {
		if claimed[imp.binding] {
			continue
		}
		exists, err := afero.Exists(c.fs, imp.source)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", imp.source, err)
		}
		if exists {
			// Outside the scanned tree or excluded; not ours to judge.
			continue
		}

		orphan := Orphan{Binding: imp.binding, ModulePath: imp.modulePath, Line: imp.line}
		for _, reg := range mounts[imp.binding] {
			orphan.RoutePaths = append(orphan.RoutePaths, reg.Path)
		}
		report.Orphaned = append(report.Orphaned, orphan)
	}

	log.Debug().
		Str("router", routerFile).
		Int("modules", len(modules)).
		Int("missing", len(report.Missing)).
		Int("orphaned", len(report.Orphaned)).
		Msg("route check complete")

	return report, nil
}

// Fix registers every missing module and, when prune is set, removes every
// orphaned import with its registrations. Each router update is a separate
// read-modify-write; the first failure stops the run and earlier updates
// stay applied.
func (c *Checker) Fix(report *Report, prune bool) (*FixResult, error) {
	result := &FixResult{}

	for _, m := range report.Missing {
		taken, err := c.updater.RouteExists(report.RouterFile, m.Request.RoutePath)
		if err != nil {
			return result, fmt.Errorf("failed to register %s: %w", m.Module.Name, err)
		}
		if taken {
			// The route path is mounted by another handler.
			result.Skipped = append(result.Skipped, m.Module.Name)
			continue
		}

		if !m.Imported {
			bound, err := c.updater.ImportExists(report.RouterFile, m.Request.RouterBindingName)
			if err != nil {
				return result, fmt.Errorf("failed to register %s: %w", m.Module.Name, err)
			}
			if bound {
				// The binding name already imports a different module.
				log.Warn().
					Str("module", m.Module.RelPath).
					Str("binding", m.Request.RouterBindingName).
					Msg("binding already in use, not registering")
				result.Skipped = append(result.Skipped, m.Module.Name)
				continue
			}
		}

		if _, err := c.updater.EnsureRoute(report.RouterFile, m.Request); err != nil {
			return result, fmt.Errorf("failed to register %s: %w", m.Module.Name, err)
		}
		result.Registered = append(result.Registered, m.Module.Name)
	}

	if !prune {
		return result, nil
	}

	for _, o := range report.Orphaned {
		if err := c.updater.RemoveRoute(report.RouterFile, o.Binding); err != nil {
			return result, fmt.Errorf("failed to remove %s: %w", o.Binding, err)
		}
		result.Removed = append(result.Removed, o.Binding)
	}

	return result, nil
}
