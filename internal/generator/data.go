// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package generator

import (
	"github.com/LOPIN6FARRIER/katax-cli/internal/naming"
	"github.com/LOPIN6FARRIER/katax-cli/pkg/types"
)

type endpointData struct {
	Name       string
	Pascal     string
	Camel      string
	Table      string
	Fields     []fieldData
	Handlers   []handlerData
	Schemas    []string
	Validate   bool
	Repository bool
	HasBody    bool
}

type fieldData struct {
	Name     string
	TSType   string
	Zod      string
	Required bool
}

type handlerData struct {
	// Kind is list, get, create, replace, update or delete
	Kind   string
	Method string
	Route  string
	Func   string
	Schema string
}

// HandlerFuncs lists the handler function names in route order.
func (d endpointData) HandlerFuncs() []string {
	names := make([]string, len(d.Handlers))
	for i, h := range d.Handlers {
		names[i] = h.Func
	}
	return names
}

func newEndpointData(ep *types.Endpoint, opts Options) endpointData {
	pascal := naming.PascalCase(ep.Name)
	d := endpointData{
		Name:       naming.EndpointDir(ep.Name),
		Pascal:     pascal,
		Camel:      naming.CamelCase(ep.Name),
		Table:      naming.SnakeCase(ep.Name),
		Validate:   opts.Validator == "zod",
		Repository: repositoryEnabled(ep, opts),
	}

	for _, f := range ep.Fields {
		d.Fields = append(d.Fields, fieldData{
			Name:     f.Name,
			TSType:   f.Type.TSType(),
			Zod:      zodExpr(f),
			Required: f.Required,
		})
	}

	createSchema := "create" + pascal + "Schema"
	updateSchema := "update" + pascal + "Schema"
	schemas := map[string]bool{}

	for _, m := range types.AllMethods {
		if !ep.HasMethod(m) {
			continue
		}
		switch m {
		case types.MethodGet:
			d.Handlers = append(d.Handlers,
				handlerData{Kind: "list", Method: m.Lower(), Route: "/", Func: "list" + pascal},
				handlerData{Kind: "get", Method: m.Lower(), Route: "/:id", Func: "get" + pascal + "ById"},
			)
		case types.MethodPost:
			d.Handlers = append(d.Handlers, handlerData{Kind: "create", Method: m.Lower(), Route: "/", Func: "create" + pascal, Schema: createSchema})
			schemas[createSchema] = true
		case types.MethodPut:
			d.Handlers = append(d.Handlers, handlerData{Kind: "replace", Method: m.Lower(), Route: "/:id", Func: "replace" + pascal, Schema: createSchema})
			schemas[createSchema] = true
		case types.MethodPatch:
			d.Handlers = append(d.Handlers, handlerData{Kind: "update", Method: m.Lower(), Route: "/:id", Func: "update" + pascal, Schema: updateSchema})
			schemas[updateSchema] = true
		case types.MethodDelete:
			d.Handlers = append(d.Handlers, handlerData{Kind: "delete", Method: m.Lower(), Route: "/:id", Func: "delete" + pascal})
		}
		if m.HasBody() {
			d.HasBody = true
		}
	}

	for _, s := range []string{createSchema, updateSchema} {
		if schemas[s] {
			d.Schemas = append(d.Schemas, s)
		}
	}

	return d
}

func repositoryEnabled(ep *types.Endpoint, opts Options) bool {
	return ep.Repository && opts.Database != "" && opts.Database != "none"
}

func zodExpr(f types.Field) string {
	var expr string
	switch f.Type {
	case types.FieldNumber:
		expr = "z.number()"
	case types.FieldBoolean:
		expr = "z.boolean()"
	case types.FieldEmail:
		expr = "z.string().email()"
	case types.FieldDate:
		expr = "z.coerce.date()"
	case types.FieldUUID:
		expr = "z.string().uuid()"
	default:
		expr = "z.string()"
		if f.Required {
			expr += ".min(1)"
		}
	}
	if !f.Required {
		expr += ".optional()"
	}
	return expr
}
