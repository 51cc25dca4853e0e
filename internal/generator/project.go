// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package generator

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
)

// ProjectOptions describes a project to scaffold.
type ProjectOptions struct {
	Options

	// Name is the npm package name
	Name string

	// Port is the default HTTP port
	Port int

	// RouterFile is the router aggregation file, relative to the project root
	RouterFile string
}

type projectData struct {
	Name     string
	DBName   string
	Port     int
	Database string
}

type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Type            string            `json:"type"`
	Main            string            `json:"main"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// RenderProject renders the files of a new project rooted at root.
func RenderProject(root string, opts ProjectOptions) ([]File, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if opts.Port == 0 {
		opts.Port = 3000
	}
	if opts.RouterFile == "" {
		opts.RouterFile = filepath.Join("src", "api", "routes.ts")
	}

	data := projectData{
		Name:     opts.Name,
		DBName:   naming.SnakeCase(opts.Name),
		Port:     opts.Port,
		Database: opts.Database,
	}

	pkg, err := renderPackageJSON(opts)
	if err != nil {
		return nil, err
	}

	files := []File{{Kind: "package", Path: filepath.Join(root, "package.json"), Content: pkg}}

	templated := []struct {
		kind, tmpl, path string
	}{
		{"tsconfig", "tsconfig.json.tmpl", "tsconfig.json"},
		{"gitignore", "gitignore.tmpl", ".gitignore"},
		{"env", "env.example.tmpl", ".env.example"},
		{"index", "index.ts.tmpl", filepath.Join("src", "index.ts")},
		{"app", "app.ts.tmpl", filepath.Join("src", "app.ts")},
		{"router", "router.ts.tmpl", opts.RouterFile},
	}
	if opts.Database != "" && opts.Database != "none" {
		templated = append(templated, struct{ kind, tmpl, path string }{
			"database",
			fmt.Sprintf("connection.%s.ts.tmpl", opts.Database),
			filepath.Join("src", "database", "connection.ts"),
		})
	}

	for _, t := range templated {
		content, err := execute(t.tmpl, data)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Kind: t.kind, Path: filepath.Join(root, t.path), Content: content})
	}
	return files, nil
}

// ScaffoldProject renders and writes a new project rooted at root.
func (w *Writer) ScaffoldProject(root string, opts ProjectOptions, force bool) ([]string, error) {
	files, err := RenderProject(root, opts)
	if err != nil {
		return nil, err
	}
	return w.WriteFiles(files, force)
}

func renderPackageJSON(opts ProjectOptions) ([]byte, error) {
	pkg := packageJSON{
		Name:    naming.KebabCase(opts.Name),
		Version: "1.0.0",
		Private: true,
		Type:    "module",
		Main:    "dist/index.js",
		Scripts: map[string]string{
			"dev":   "tsx watch src/index.ts",
			"build": "tsc",
			"start": "node dist/index.js",
		},
		Dependencies: map[string]string{
			"dotenv":  "^16.4.5",
			"express": "^4.19.2",
		},
		DevDependencies: map[string]string{
			"@types/express": "^4.17.21",
			"@types/node":    "^20.14.10",
			"tsx":            "^4.16.2",
			"typescript":     "^5.5.4",
		},
	}

	if opts.Validator == "zod" {
		pkg.Dependencies["zod"] = "^3.23.8"
	}

	switch opts.Database {
	case "postgresql":
		pkg.Dependencies["pg"] = "^8.12.0"
		pkg.DevDependencies["@types/pg"] = "^8.11.6"
	case "mysql":
		pkg.Dependencies["mysql2"] = "^3.11.0"
	case "mongodb":
		pkg.Dependencies["mongodb"] = "^6.8.0"
	}

	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render package.json: %w", err)
	}
	return append(data, '\n'), nil
}
