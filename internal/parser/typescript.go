// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package parser provides TypeScript parsing capabilities backed by tree-sitter.
package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptParser provides TypeScript/JavaScript AST parsing capabilities using tree-sitter.
// A parser must not be shared between goroutines.
type TypeScriptParser struct {
	parser *sitter.Parser
}

// NewTypeScriptParser creates a new TypeScript parser.
func NewTypeScriptParser() *TypeScriptParser {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	return &TypeScriptParser{
		parser: parser,
	}
}

// ParsedTSFile represents a parsed TypeScript source file.
type ParsedTSFile struct {
	// Path is the file path
	Path string

	// Content is the original source content
	Content []byte

	// Tree is the tree-sitter parse tree
	Tree *sitter.Tree

	// RootNode is the root node of the AST
	RootNode *sitter.Node
}

// Parse parses TypeScript source code from bytes.
// Tree-sitter is error tolerant, so a returned file may still contain
// ERROR or MISSING nodes; use FirstError to find them.
func (p *TypeScriptParser) Parse(filename string, content []byte) (*ParsedTSFile, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TypeScript: %w", err)
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		tree.Close()
		return nil, fmt.Errorf("failed to get root node")
	}

	return &ParsedTSFile{
		Path:     filename,
		Content:  content,
		Tree:     tree,
		RootNode: rootNode,
	}, nil
}

// Walk walks all nodes in the tree, calling fn for each node.
// If fn returns false, it stops recursing into that node's children.
func Walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !fn(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), fn)
	}
}

// FirstError returns the first ERROR or MISSING node in document order,
// or nil when the tree is free of syntax errors.
func FirstError(rootNode *sitter.Node) *sitter.Node {
	if rootNode == nil || !rootNode.HasError() {
		return nil
	}

	var found *sitter.Node
	Walk(rootNode, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})

	// HasError can be set on the root without a dedicated error child.
	if found == nil {
		found = rootNode
	}
	return found
}

// Close cleans up parser resources.
func (p *TypeScriptParser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Close cleans up the parsed file resources.
func (pf *ParsedTSFile) Close() {
	if pf.Tree != nil {
		pf.Tree.Close()
	}
}

// GetCallArguments returns the argument expressions of a call_expression.
func GetCallArguments(node *sitter.Node) []*sitter.Node {
	var args []*sitter.Node

	if node == nil || node.Type() != "call_expression" {
		return args
	}

	argNode := node.ChildByFieldName("arguments")
	if argNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.Type() == "arguments" {
				argNode = child
				break
			}
		}
	}

	if argNode == nil {
		return args
	}

	// Named children skip punctuation; comments are named too, so filter them.
	for i := 0; i < int(argNode.NamedChildCount()); i++ {
		child := argNode.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		args = append(args, child)
	}

	return args
}

// ExtractStringLiteral extracts a string value from a string node.
// Template strings are only accepted when they contain no substitutions.
func ExtractStringLiteral(node *sitter.Node, content []byte) (string, bool) {
	if node == nil {
		return "", false
	}

	switch node.Type() {
	case "string":
	case "template_string":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if node.NamedChild(i).Type() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}

	text := node.Content(content)

	if len(text) >= 2 {
		if (text[0] == '"' && text[len(text)-1] == '"') ||
			(text[0] == '\'' && text[len(text)-1] == '\'') ||
			(text[0] == '`' && text[len(text)-1] == '`') {
			return text[1 : len(text)-1], true
		}
	}

	return text, true
}

// GetMemberExpressionParts returns the object and property of a member_expression.
func GetMemberExpressionParts(node *sitter.Node, content []byte) (object, property string) {
	if node == nil || node.Type() != "member_expression" {
		return "", ""
	}

	objNode := node.ChildByFieldName("object")
	if objNode == nil && node.ChildCount() > 0 {
		objNode = node.Child(0)
	}

	propNode := node.ChildByFieldName("property")
	if propNode == nil && node.ChildCount() > 2 {
		propNode = node.Child(2)
	}

	if objNode != nil {
		object = objNode.Content(content)
	}
	if propNode != nil {
		property = propNode.Content(content)
	}

	return object, property
}

// HasChildOfType reports whether node has a direct child of the given type.
func HasChildOfType(node *sitter.Node, nodeType string) bool {
	return ChildOfType(node, nodeType) != nil
}

// ChildOfType returns the first direct child of the given type.
func ChildOfType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// TrimQuotes strips surrounding JavaScript quote characters.
func TrimQuotes(s string) string {
	return strings.Trim(s, "\"'`")
}
