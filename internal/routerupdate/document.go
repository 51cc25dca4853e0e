// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package routerupdate edits Express router aggregation files in place.
//
// A router file is parsed into its top-level statements, each of which keeps
// the exact source text it was parsed from. Imports and route registrations
// are recognised structurally; everything else passes through untouched, so
// reprinting a document reproduces unchanged statements byte for byte.
//
// Every operation is a one-shot read, parse, transform, print and write
// cycle. Nothing is cached between calls and no file locking is performed:
// two unsynchronised callers updating the same file can lose one update.
package routerupdate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/LOPIN6FARRIER/katax-cli/internal/parser"
)

// Statement is one top-level statement of a router file. The concrete type is
// one of *ImportStatement, *RouteRegistration, *ExportDefault or
// *OtherStatement.
type Statement interface {
	// Text returns the statement's source text.
	Text() string

	// Line returns the 1-based line the statement started on in the parsed
	// source, or 0 for statements inserted since.
	Line() int

	base() *stmtBase
}

// stmtBase carries the source text shared by all statement kinds.
type stmtBase struct {
	leading  string
	text     string
	line     int
	inserted bool
}

func (b *stmtBase) Text() string    { return b.text }
func (b *stmtBase) Line() int       { return b.line }
func (b *stmtBase) base() *stmtBase { return b }

// ImportStatement is an import declaration.
type ImportStatement struct {
	stmtBase

	// BoundName is the default binding ("usersRouter" in
	// `import usersRouter from './users/users.routes.js'`). It is empty for
	// imports with only named or namespace bindings.
	BoundName string

	// ModulePath is the unquoted module specifier.
	ModulePath string
}

// RouteRegistration is an expression statement of the shape
// `<TargetObject>.<MethodName>(<path>, <mount>, ...)`.
type RouteRegistration struct {
	stmtBase

	TargetObject string
	MethodName   string

	// PathArgument is the raw source text of the first argument.
	PathArgument string

	// Path is the unquoted value of the first argument when it is a plain
	// string literal, otherwise empty.
	Path string

	// MountArgument is the raw source text of the second argument, the
	// sub-router in `router.use('/users', usersRouter)`. Any further
	// arguments (trailing middleware) are not recorded.
	MountArgument string

	// MountIsIdentifier reports whether the second argument is a bare identifier.
	MountIsIdentifier bool
}

// ExportDefault is a default-style export: `export default x`, `export = x`
// or a bare `export * from '...'`.
type ExportDefault struct {
	stmtBase
}

// OtherStatement is any statement that is neither an import, a route
// registration nor a default export.
type OtherStatement struct {
	stmtBase

	// Kind is the tree-sitter node type of the statement.
	Kind string
}

// Document is a parsed router source file.
type Document struct {
	statements []Statement
	trailer    string
}

// Parse parses router source text. It fails with a *ParseError when the
// source contains a syntax error.
func Parse(src []byte) (*Document, error) {
	p := parser.NewTypeScriptParser()
	defer p.Close()

	pf, err := p.Parse("", src)
	if err != nil {
		return nil, err
	}
	defer pf.Close()

	if errNode := parser.FirstError(pf.RootNode); errNode != nil {
		pos := errNode.StartPoint()
		return nil, &ParseError{
			Line:   int(pos.Row) + 1,
			Column: int(pos.Column) + 1,
		}
	}

	doc := &Document{}
	root := pf.RootNode
	var prevEnd uint32
	var prevEndRow uint32 = ^uint32(0)

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		gap := string(src[prevEnd:node.StartByte()])

		// A comment on the same line as the previous statement travels with it.
		if node.Type() == "comment" && len(doc.statements) > 0 &&
			node.StartPoint().Row == prevEndRow && !strings.Contains(gap, "\n") {
			last := doc.statements[len(doc.statements)-1].base()
			last.text += gap + node.Content(src)
			prevEnd = node.EndByte()
			prevEndRow = node.EndPoint().Row
			continue
		}

		st := classify(node, src)
		b := st.base()
		b.leading = gap
		b.text = node.Content(src)
		b.line = int(node.StartPoint().Row) + 1
		doc.statements = append(doc.statements, st)

		prevEnd = node.EndByte()
		prevEndRow = node.EndPoint().Row
	}

	doc.trailer = string(src[prevEnd:])
	return doc, nil
}

// classify maps a top-level node onto a statement variant.
func classify(node *sitter.Node, src []byte) Statement {
	switch node.Type() {
	case "import_statement":
		if imp := classifyImport(node, src); imp != nil {
			return imp
		}
	case "expression_statement":
		if reg := classifyRegistration(node, src); reg != nil {
			return reg
		}
	case "export_statement":
		if isDefaultExport(node) {
			return &ExportDefault{}
		}
	}
	return &OtherStatement{Kind: node.Type()}
}

func classifyImport(node *sitter.Node, src []byte) *ImportStatement {
	imp := &ImportStatement{}

	if source := node.ChildByFieldName("source"); source != nil {
		imp.ModulePath = parser.TrimQuotes(source.Content(src))
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_clause":
			if id := parser.ChildOfType(child, "identifier"); id != nil {
				imp.BoundName = id.Content(src)
			}
		case "import_require_clause":
			// import x = require('y')
			if id := parser.ChildOfType(child, "identifier"); id != nil {
				imp.BoundName = id.Content(src)
			}
			if s := parser.ChildOfType(child, "string"); s != nil {
				imp.ModulePath = parser.TrimQuotes(s.Content(src))
			}
		case "string":
			if imp.ModulePath == "" {
				imp.ModulePath = parser.TrimQuotes(child.Content(src))
			}
		}
	}

	return imp
}

func classifyRegistration(node *sitter.Node, src []byte) *RouteRegistration {
	if node.NamedChildCount() == 0 {
		return nil
	}
	call := node.NamedChild(0)
	if call.Type() != "call_expression" {
		return nil
	}

	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return nil
	}
	if obj := callee.ChildByFieldName("object"); obj == nil || obj.Type() != "identifier" {
		return nil
	}
	object, property := parser.GetMemberExpressionParts(callee, src)
	if property == "" {
		return nil
	}

	args := parser.GetCallArguments(call)
	if len(args) < 2 {
		return nil
	}

	first, mount := args[0], args[1]
	reg := &RouteRegistration{
		TargetObject:      object,
		MethodName:        property,
		PathArgument:      first.Content(src),
		MountArgument:     mount.Content(src),
		MountIsIdentifier: mount.Type() == "identifier",
	}
	if path, ok := parser.ExtractStringLiteral(first, src); ok {
		reg.Path = path
	}
	return reg
}

func isDefaultExport(node *sitter.Node) bool {
	if parser.HasChildOfType(node, "default") || parser.HasChildOfType(node, "=") {
		return true
	}
	// export * from './x' has a bare '*' and no export clause.
	return parser.HasChildOfType(node, "*") && !parser.HasChildOfType(node, "export_clause")
}

// Statements returns the document's statements in order.
func (d *Document) Statements() []Statement {
	out := make([]Statement, len(d.statements))
	copy(out, d.statements)
	return out
}

// Imports returns all top-level import statements.
func (d *Document) Imports() []*ImportStatement {
	var out []*ImportStatement
	for _, st := range d.statements {
		if imp, ok := st.(*ImportStatement); ok {
			out = append(out, imp)
		}
	}
	return out
}

// Registrations returns all top-level route registrations.
func (d *Document) Registrations() []*RouteRegistration {
	var out []*RouteRegistration
	for _, st := range d.statements {
		if reg, ok := st.(*RouteRegistration); ok {
			out = append(out, reg)
		}
	}
	return out
}

// ImportExists reports whether an import binds boundName as its default.
func (d *Document) ImportExists(boundName string) bool {
	if boundName == "" {
		return false
	}
	for _, imp := range d.Imports() {
		if imp.BoundName == boundName {
			return true
		}
	}
	return false
}

// RouteExists reports whether a `.use(...)` registration mounts routePath.
// The first argument matches either by its literal value or its raw text.
func (d *Document) RouteExists(routePath string) bool {
	if routePath == "" {
		return false
	}
	for _, reg := range d.Registrations() {
		if reg.MethodName != "use" {
			continue
		}
		if reg.Path == routePath || reg.PathArgument == routePath {
			return true
		}
	}
	return false
}
