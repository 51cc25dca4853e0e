// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/LOPIN6FARRIER/katax-cli/internal/routerupdate"
	"github.com/LOPIN6FARRIER/katax-cli/internal/scanner"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the routes mounted in the router file",
	Long: `List every route registration in the router aggregation file with the
module its handler is imported from.

Example:
  katax routes
  katax routes -C ./my-api`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

// routeRow is one line of the routes table.
type routeRow struct {
	Line    int
	Path    string
	Handler string
	Module  string
	Status  string
}

func runRoutes(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	doc, err := routerupdate.New(fsys).Document(p.routerFile())
	if err != nil {
		return err
	}

	rows := collectRoutes(doc, filepath.Dir(p.routerFile()))
	if len(rows) == 0 {
		printInfo("No routes registered in %s", relTo(p.Root, p.routerFile()))
		return nil
	}

	if !quiet {
		renderRoutes(cmd.OutOrStdout(), relTo(p.Root, p.routerFile()), rows)
	}
	return nil
}

// collectRoutes pairs each registration with the import of its handler.
func collectRoutes(doc *routerupdate.Document, routerDir string) []routeRow {
	modules := make(map[string]string)
	for _, imp := range doc.Imports() {
		if imp.BoundName != "" {
			modules[imp.BoundName] = imp.ModulePath
		}
	}

	var rows []routeRow
	for _, reg := range doc.Registrations() {
		row := routeRow{
			Line:    reg.Line(),
			Path:    defaultString(reg.Path, reg.PathArgument),
			Handler: reg.MountArgument,
			Status:  "ok",
		}
		if reg.MethodName != "use" {
			row.Path = fmt.Sprintf("%s %s", reg.MethodName, row.Path)
		}

		module, imported := modules[reg.MountArgument]
		switch {
		case !reg.MountIsIdentifier:
			row.Status = "inline"
		case !imported:
			row.Status = "not imported"
		default:
			row.Module = module
			if src, ok := scanner.SourcePath(module); ok {
				if exists, _ := afero.Exists(fsys, filepath.Join(routerDir, src)); !exists {
					row.Status = "missing source"
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func renderRoutes(out io.Writer, routerFile string, rows []routeRow) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.SetTitle(routerFile)
	tbl.AppendHeader(table.Row{"Line", "Path", "Handler", "Module", "Status"})
	for _, r := range rows {
		tbl.AppendRow(table.Row{r.Line, r.Path, r.Handler, r.Module, r.Status})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d", len(rows))})
	tbl.Render()
}
