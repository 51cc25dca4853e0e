// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package generator

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"join": strings.Join,
}

var templates = template.Must(
	template.New("").Funcs(funcs).ParseFS(templateFS, "templates/endpoint/*.tmpl", "templates/project/*.tmpl"),
)

// execute renders the named template. Names are file base names, so
// endpoint and project templates must not share one.
func execute(name string, data any) ([]byte, error) {
	t := templates.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
