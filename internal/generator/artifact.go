// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package generator renders Express/TypeScript project and endpoint sources.
package generator

import (
	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
	"github.com/LOPIN6FARRIER/katax-cli/pkg/types"
)

// Options are the project-level choices that shape generated code.
type Options struct {
	// Database selects the repository flavour (postgresql, mysql, mongodb, none)
	Database string

	// Validator selects the request validation library (zod, none)
	Validator string
}

// Artifact renders one per-endpoint source file.
type Artifact interface {
	// Kind names the artifact and its file suffix (e.g., "controller").
	Kind() string

	// FileName returns the file name for ep, e.g. "users.controller.ts".
	FileName(ep *types.Endpoint) string

	// Render produces the file content.
	Render(ep *types.Endpoint, opts Options) ([]byte, error)
}

// Conditional is an optional interface for artifacts that are only
// generated for some endpoints or project options.
type Conditional interface {
	Enabled(ep *types.Endpoint, opts Options) bool
}

// File is a rendered file that has not been written yet.
type File struct {
	Kind    string
	Path    string
	Content []byte
}

func artifactFileName(ep *types.Endpoint, kind string) string {
	return naming.ArtifactFile(ep.Name, kind)
}
