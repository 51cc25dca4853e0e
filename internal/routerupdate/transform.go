// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package routerupdate

import (
	"fmt"
	"strings"
)

// routerReceiver is the router variable generated router files declare.
const routerReceiver = "router"

// AddRoute inserts an import of req.RouterBindingName and a
// `router.use(req.RoutePath, req.RouterBindingName)` registration.
//
// The import goes right after the last existing import, or at the top of the
// document when there is none. The registration goes right before the first
// default export, or at the end of the document when there is none. AddRoute
// does not check for existing copies; see ImportExists and RouteExists.
func (d *Document) AddRoute(req Request) {
	d.insert(newImport(req), newRegistration(req))
}

// addImport inserts only the import half of req.
func (d *Document) addImport(req Request) {
	d.insert(newImport(req), nil)
}

// addRegistration inserts only the registration half of req.
func (d *Document) addRegistration(req Request) {
	d.insert(nil, newRegistration(req))
}

// EnsureRoute inserts whichever half of req is not already present and
// reports which halves it added.
func (d *Document) EnsureRoute(req Request) (importAdded, routeAdded bool) {
	importAdded = !d.ImportExists(req.RouterBindingName)
	routeAdded = !d.RouteExists(req.RoutePath)

	switch {
	case importAdded && routeAdded:
		d.AddRoute(req)
	case importAdded:
		d.addImport(req)
	case routeAdded:
		d.addRegistration(req)
	}
	return importAdded, routeAdded
}

func (d *Document) insert(imp *ImportStatement, reg *RouteRegistration) {
	lastImport, export := -1, -1
	for i, st := range d.statements {
		switch st.(type) {
		case *ImportStatement:
			lastImport = i
		case *ExportDefault:
			if export < 0 {
				export = i
			}
		}
	}

	out := make([]Statement, 0, len(d.statements)+2)
	for i, st := range d.statements {
		if reg != nil && i == export {
			out = append(out, reg)
		}
		out = append(out, st)
		if imp != nil && i == lastImport {
			out = append(out, imp)
		}
	}

	if imp != nil && lastImport < 0 {
		at := 0
		// Keep a #! line first.
		if len(out) > 0 {
			if other, ok := out[0].(*OtherStatement); ok && other.Kind == "hash_bang_line" {
				at = 1
			}
		}
		out = append(out[:at], append([]Statement{imp}, out[at:]...)...)
	}
	if reg != nil && export < 0 {
		out = append(out, reg)
	}

	d.statements = out
}

// RemoveRoute drops every import whose default binding is boundName and
// every registration whose second argument is the identifier boundName. It
// returns the number of statements removed.
func (d *Document) RemoveRoute(boundName string) int {
	type carry struct {
		leading string
		atStart bool
	}

	kept := make([]Statement, 0, len(d.statements))
	removed := 0
	var pending *carry

	for _, st := range d.statements {
		if matchesBinding(st, boundName) {
			removed++
			lead := st.base().leading
			if pending == nil {
				pending = &carry{leading: lead, atStart: len(kept) == 0}
			} else if !pending.atStart {
				pending.leading = widerGap(pending.leading, lead)
			}
			continue
		}

		if pending != nil {
			b := st.base()
			if pending.atStart {
				b.leading = pending.leading
			} else {
				b.leading = widerGap(pending.leading, b.leading)
			}
			pending = nil
		}
		kept = append(kept, st)
	}

	d.statements = kept
	return removed
}

func matchesBinding(st Statement, boundName string) bool {
	switch s := st.(type) {
	case *ImportStatement:
		return s.BoundName != "" && s.BoundName == boundName
	case *RouteRegistration:
		return s.MountIsIdentifier && s.MountArgument == boundName
	default:
		return false
	}
}

// widerGap returns the gap spanning more lines, preferring b on a tie.
func widerGap(a, b string) string {
	if strings.Count(a, "\n") > strings.Count(b, "\n") {
		return a
	}
	return b
}

func newImport(req Request) *ImportStatement {
	return &ImportStatement{
		stmtBase: stmtBase{
			text:     fmt.Sprintf("import %s from %s;", req.RouterBindingName, quote(req.ImportModulePath)),
			inserted: true,
		},
		BoundName:  req.RouterBindingName,
		ModulePath: req.ImportModulePath,
	}
}

func newRegistration(req Request) *RouteRegistration {
	pathArg := quote(req.RoutePath)
	return &RouteRegistration{
		stmtBase: stmtBase{
			text:     fmt.Sprintf("%s.use(%s, %s);", routerReceiver, pathArg, req.RouterBindingName),
			inserted: true,
		},
		TargetObject:      routerReceiver,
		MethodName:        "use",
		PathArgument:      pathArg,
		Path:              req.RoutePath,
		MountArgument:     req.RouterBindingName,
		MountIsIdentifier: true,
	}
}

// quote renders s as a single-quoted JavaScript string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}
