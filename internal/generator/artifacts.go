// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package generator

import (
	"fmt"

	"github.com/LOPIN6FARRIER/katax-cli/pkg/types"
)

// Artifact kinds, in the order they are generated.
const (
	KindTypes      = "types"
	KindValidator  = "validator"
	KindRepository = "repository"
	KindController = "controller"
	KindHandler    = "handler"
	KindRoutes     = "routes"
)

type templateArtifact struct {
	kind    string
	tmpl    func(opts Options) string
	enabled func(ep *types.Endpoint, opts Options) bool
}

func (a *templateArtifact) Kind() string {
	return a.kind
}

func (a *templateArtifact) FileName(ep *types.Endpoint) string {
	return artifactFileName(ep, a.kind)
}

func (a *templateArtifact) Enabled(ep *types.Endpoint, opts Options) bool {
	if a.enabled == nil {
		return true
	}
	return a.enabled(ep, opts)
}

func (a *templateArtifact) Render(ep *types.Endpoint, opts Options) ([]byte, error) {
	return execute(a.tmpl(opts), newEndpointData(ep, opts))
}

func fixed(name string) func(Options) string {
	return func(Options) string { return name }
}

// Builtins returns the built-in artifacts in generation order.
func Builtins() []Artifact {
	return []Artifact{
		&templateArtifact{kind: KindTypes, tmpl: fixed("types.ts.tmpl")},
		&templateArtifact{
			kind: KindValidator,
			tmpl: fixed("validator.ts.tmpl"),
			enabled: func(_ *types.Endpoint, opts Options) bool {
				return opts.Validator == "zod"
			},
		},
		&templateArtifact{
			kind: KindRepository,
			tmpl: func(opts Options) string {
				return fmt.Sprintf("repository.%s.ts.tmpl", opts.Database)
			},
			enabled: repositoryEnabled,
		},
		&templateArtifact{kind: KindController, tmpl: fixed("controller.ts.tmpl")},
		&templateArtifact{kind: KindHandler, tmpl: fixed("handler.ts.tmpl")},
		&templateArtifact{kind: KindRoutes, tmpl: fixed("routes.ts.tmpl")},
	}
}

func init() {
	for _, a := range Builtins() {
		globalRegistry.MustRegister(a)
	}
}
