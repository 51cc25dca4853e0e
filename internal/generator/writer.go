// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
	"github.com/LOPIN6FARRIER/katax-cli/pkg/types"
)

// ErrFileExists is returned when a target file exists and Force is not set.
var ErrFileExists = errors.New("file already exists")

// WriteOptions controls how generated files are written.
type WriteOptions struct {
	Options

	// Force overwrites existing files
	Force bool
}

// Writer writes generated files to a filesystem.
type Writer struct {
	fs       afero.Fs
	registry *Registry
}

// NewWriter returns a Writer over fs using reg, defaulting to the OS
// filesystem and the global registry.
func NewWriter(fs afero.Fs, reg *Registry) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if reg == nil {
		reg = globalRegistry
	}
	return &Writer{fs: fs, registry: reg}
}

// Fs returns the filesystem the writer targets.
func (w *Writer) Fs() afero.Fs {
	return w.fs
}

// RenderEndpoint renders every active artifact for ep under
// <apiDir>/<kebab-name>/ without writing anything.
func (w *Writer) RenderEndpoint(apiDir string, ep *types.Endpoint, opts Options) ([]File, error) {
	if err := ep.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	dir := naming.EndpointDir(ep.Name)
	if dir == "" || !naming.IsIdentifier(naming.RouterBinding(ep.Name)) {
		return nil, fmt.Errorf("invalid endpoint: name %q does not form a valid identifier", ep.Name)
	}

	var files []File
	for _, a := range w.registry.Active(ep, opts) {
		content, err := a.Render(ep, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", a.Kind(), err)
		}
		files = append(files, File{
			Kind:    a.Kind(),
			Path:    filepath.Join(apiDir, dir, a.FileName(ep)),
			Content: content,
		})
	}
	return files, nil
}

// WriteEndpoint renders and writes the artifacts for ep and returns the
// written paths. Existing files are refused before anything is written
// unless opts.Force is set. Files written before a later failure stay.
func (w *Writer) WriteEndpoint(apiDir string, ep *types.Endpoint, opts WriteOptions) ([]string, error) {
	files, err := w.RenderEndpoint(apiDir, ep, opts.Options)
	if err != nil {
		return nil, err
	}
	return w.WriteFiles(files, opts.Force)
}

// WriteFiles writes files, creating parent directories as needed.
func (w *Writer) WriteFiles(files []File, force bool) ([]string, error) {
	if !force {
		for _, f := range files {
			exists, err := afero.Exists(w.fs, f.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", f.Path, err)
			}
			if exists {
				return nil, fmt.Errorf("%w: %s (use --force to overwrite)", ErrFileExists, f.Path)
			}
		}
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := w.fs.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := afero.WriteFile(w.fs, f.Path, f.Content, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		log.Debug().Str("file", f.Path).Str("kind", f.Kind).Msg("file written")
		written = append(written, f.Path)
	}
	return written, nil
}

// RemoveEndpoint deletes the endpoint directory under apiDir.
func (w *Writer) RemoveEndpoint(apiDir, name string) (string, error) {
	dir := naming.EndpointDir(name)
	if dir == "" {
		return "", fmt.Errorf("invalid endpoint name %q", name)
	}
	path := filepath.Join(apiDir, dir)
	if _, err := w.fs.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		return "", err
	}
	if err := w.fs.RemoveAll(path); err != nil {
		return "", fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return path, nil
}
