// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package routerupdate

import (
	"fmt"

	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
)

// Request describes one import plus one route registration to add.
type Request struct {
	// RouterBindingName is the identifier the sub-router is imported as.
	RouterBindingName string

	// ImportModulePath is the module specifier to import from.
	ImportModulePath string

	// RoutePath is the mount path, e.g. "/users". Its shape is not checked.
	RoutePath string
}

// NewRequest builds the conventional request for an endpoint name:
// "users" mounts usersRouter from ./users/users.routes.js at routePath.
func NewRequest(name, routePath string) Request {
	if routePath == "" {
		routePath = naming.RoutePath(name)
	}
	return Request{
		RouterBindingName: naming.RouterBinding(name),
		ImportModulePath:  naming.ModuleImportPath(name),
		RoutePath:         routePath,
	}
}

// Validate checks the request can be rendered into valid source.
func (r Request) Validate() error {
	if !naming.IsIdentifier(r.RouterBindingName) {
		return fmt.Errorf("%w: %q is not a valid identifier", ErrInvalidRequest, r.RouterBindingName)
	}
	if r.ImportModulePath == "" {
		return fmt.Errorf("%w: import module path is empty", ErrInvalidRequest)
	}
	if r.RoutePath == "" {
		return fmt.Errorf("%w: route path is empty", ErrInvalidRequest)
	}
	return nil
}
