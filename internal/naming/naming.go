// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package naming converts endpoint names into the identifiers, file names and
// paths used by generated code.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// reserved holds JavaScript keywords that cannot be used as bindings.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "export": true, "extends": true, "false": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "new": true, "null": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "true": true, "try": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
	"let": true, "static": true, "yield": true, "await": true, "enum": true,
}

// Words splits s on separators and case boundaries and lowercases the parts.
// "userProfiles", "user_profiles" and "User Profiles" all give
// ["user", "profiles"]; "HTTPRequest" gives ["http", "request"].
func Words(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}

// PascalCase converts s to PascalCase: "user-profiles" -> "UserProfiles".
func PascalCase(s string) string {
	// A Caser is stateful, so each call gets its own.
	title := cases.Title(language.English)
	var sb strings.Builder
	for _, w := range Words(s) {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}

// CamelCase converts s to camelCase: "user-profiles" -> "userProfiles".
func CamelCase(s string) string {
	return ToLowerCamelCase(PascalCase(s))
}

// KebabCase converts s to kebab-case: "UserProfiles" -> "user-profiles".
func KebabCase(s string) string {
	return strings.Join(Words(s), "-")
}

// SnakeCase converts s to snake_case: "OrderItems" -> "order_items".
func SnakeCase(s string) string {
	return strings.Join(Words(s), "_")
}

// ToLowerCamelCase converts PascalCase to camelCase.
func ToLowerCamelCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// IsIdentifier reports whether s is usable as a JavaScript binding name.
func IsIdentifier(s string) bool {
	if s == "" || reserved[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// EndpointDir returns the directory an endpoint's files live in.
func EndpointDir(name string) string {
	return KebabCase(name)
}

// RouterBinding returns the identifier an endpoint's router is imported as.
func RouterBinding(name string) string {
	return CamelCase(name) + "Router"
}

// RoutePath returns the default mount path for an endpoint.
func RoutePath(name string) string {
	return "/" + KebabCase(name)
}

// ModuleImportPath returns the specifier the router aggregation file imports
// an endpoint's routes module by. Generated projects compile to ES modules,
// so the specifier names the emitted .js file.
func ModuleImportPath(name string) string {
	dir := EndpointDir(name)
	return "./" + dir + "/" + dir + ".routes.js"
}

// ArtifactFile returns the file name of an endpoint artifact, e.g.
// ArtifactFile("users", "controller") = "users.controller.ts".
func ArtifactFile(name, kind string) string {
	return EndpointDir(name) + "." + kind + ".ts"
}
