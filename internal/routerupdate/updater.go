// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package routerupdate

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Operation names reported in *OpError.
const (
	OpAddRoute      = "addRoute"
	OpEnsureRoute   = "ensureRoute"
	OpRemoveRoute   = "removeRoute"
	OpImportExists  = "importExists"
	OpRouteExists   = "routeExists"
	OpRegistrations = "registrations"
	OpPreview       = "preview"
	OpRead          = "read"
)

// Updater applies router updates to files. It keeps no state between calls;
// callers must serialise updates to the same file themselves.
type Updater struct {
	fs afero.Fs
}

// New returns an Updater working on fs, or on the OS filesystem when fs is nil.
func New(fs afero.Fs) *Updater {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Updater{fs: fs}
}

// AddRoute adds the import and registration described by req to the router
// file at path. It performs no duplicate check.
func (u *Updater) AddRoute(path string, req Request) error {
	if err := req.Validate(); err != nil {
		return &OpError{Op: OpAddRoute, Path: path, Err: err}
	}

	doc, mode, err := u.load(OpAddRoute, path)
	if err != nil {
		return err
	}

	doc.AddRoute(req)
	if err := u.save(OpAddRoute, path, doc.Bytes(), mode); err != nil {
		return err
	}

	log.Debug().
		Str("file", path).
		Str("binding", req.RouterBindingName).
		Str("route", req.RoutePath).
		Msg("route added")
	return nil
}

// EnsureRoute adds whichever of req's import and registration is missing.
// It reports whether the file was rewritten.
func (u *Updater) EnsureRoute(path string, req Request) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, &OpError{Op: OpEnsureRoute, Path: path, Err: err}
	}

	doc, mode, err := u.load(OpEnsureRoute, path)
	if err != nil {
		return false, err
	}

	needImport, needRoute := doc.EnsureRoute(req)
	if !needImport && !needRoute {
		return false, nil
	}

	if err := u.save(OpEnsureRoute, path, doc.Bytes(), mode); err != nil {
		return false, err
	}

	log.Debug().
		Str("file", path).
		Str("binding", req.RouterBindingName).
		Bool("import", needImport).
		Bool("route", needRoute).
		Msg("route ensured")
	return true, nil
}

// ImportExists reports whether the router file imports boundName as a
// default binding. It never writes.
func (u *Updater) ImportExists(path, boundName string) (bool, error) {
	doc, _, err := u.load(OpImportExists, path)
	if err != nil {
		return false, err
	}
	return doc.ImportExists(boundName), nil
}

// RouteExists reports whether the router file mounts routePath with `.use`.
// It never writes.
func (u *Updater) RouteExists(path, routePath string) (bool, error) {
	doc, _, err := u.load(OpRouteExists, path)
	if err != nil {
		return false, err
	}
	return doc.RouteExists(routePath), nil
}

// RemoveRoute removes the import bound to boundName and every registration
// mounting it. The file is rewritten even when nothing matched.
func (u *Updater) RemoveRoute(path, boundName string) error {
	doc, mode, err := u.load(OpRemoveRoute, path)
	if err != nil {
		return err
	}

	removed := doc.RemoveRoute(boundName)
	if err := u.save(OpRemoveRoute, path, doc.Bytes(), mode); err != nil {
		return err
	}

	log.Debug().
		Str("file", path).
		Str("binding", boundName).
		Int("removed", removed).
		Msg("route removed")
	return nil
}

// Registrations lists the route registrations in the router file.
func (u *Updater) Registrations(path string) ([]*RouteRegistration, error) {
	doc, _, err := u.load(OpRegistrations, path)
	if err != nil {
		return nil, err
	}
	return doc.Registrations(), nil
}

// Document parses the router file without modifying it.
func (u *Updater) Document(path string) (*Document, error) {
	doc, _, err := u.load(OpRead, path)
	return doc, err
}

// Preview returns the router file as it is and as AddRoute would leave it,
// without writing anything.
func (u *Updater) Preview(path string, req Request) (before, after []byte, err error) {
	if err := req.Validate(); err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}

	before, err = afero.ReadFile(u.fs, path)
	if err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}

	doc, err := Parse(before)
	if err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}
	doc.AddRoute(req)

	return before, doc.Bytes(), nil
}

// PreviewEnsure returns the router file as it is and as EnsureRoute would
// leave it, without writing anything.
func (u *Updater) PreviewEnsure(path string, req Request) (before, after []byte, err error) {
	if err := req.Validate(); err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}

	before, err = afero.ReadFile(u.fs, path)
	if err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}

	doc, err := Parse(before)
	if err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}
	doc.EnsureRoute(req)

	return before, doc.Bytes(), nil
}

// PreviewRemove returns the router file as it is and as RemoveRoute would
// leave it, without writing anything.
func (u *Updater) PreviewRemove(path, boundName string) (before, after []byte, err error) {
	before, err = afero.ReadFile(u.fs, path)
	if err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}

	doc, err := Parse(before)
	if err != nil {
		return nil, nil, &OpError{Op: OpPreview, Path: path, Err: err}
	}
	doc.RemoveRoute(boundName)

	return before, doc.Bytes(), nil
}

func (u *Updater) load(op, path string) (*Document, os.FileMode, error) {
	info, err := u.fs.Stat(path)
	if err != nil {
		return nil, 0, &OpError{Op: op, Path: path, Err: err}
	}

	src, err := afero.ReadFile(u.fs, path)
	if err != nil {
		return nil, 0, &OpError{Op: op, Path: path, Err: err}
	}

	doc, err := Parse(src)
	if err != nil {
		return nil, 0, &OpError{Op: op, Path: path, Err: err}
	}

	return doc, info.Mode().Perm(), nil
}

func (u *Updater) save(op, path string, data []byte, mode os.FileMode) error {
	if err := writeFileAtomic(u.fs, path, data, mode); err != nil {
		return &OpError{Op: op, Path: path, Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path, so a failed write leaves the original intact.
func writeFileAtomic(fs afero.Fs, path string, data []byte, mode os.FileMode) (err error) {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fs.Chmod(tmpName, mode); err != nil {
		return err
	}
	return fs.Rename(tmpName, path)
}
