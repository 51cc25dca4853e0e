// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

// Package types provides the endpoint model shared by the generators and the CLI.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Method is an HTTP method an endpoint exposes.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// AllMethods lists the methods in the order generated code declares them.
var AllMethods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// Lower returns the method as an Express router function name.
func (m Method) Lower() string {
	return strings.ToLower(string(m))
}

// HasBody reports whether requests with this method carry a validated body.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// FieldType is the type of an endpoint field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldEmail   FieldType = "email"
	FieldDate    FieldType = "date"
	FieldUUID    FieldType = "uuid"
)

var fieldTypes = map[FieldType]bool{
	FieldString:  true,
	FieldNumber:  true,
	FieldBoolean: true,
	FieldEmail:   true,
	FieldDate:    true,
	FieldUUID:    true,
}

// TSType returns the TypeScript type a field of this type is declared as.
func (t FieldType) TSType() string {
	switch t {
	case FieldNumber:
		return "number"
	case FieldBoolean:
		return "boolean"
	case FieldDate:
		return "Date"
	default:
		return "string"
	}
}

// Field is one property of an endpoint's resource.
type Field struct {
	// Name is the property name as written in TypeScript
	Name string `json:"name" yaml:"name"`

	// Type is the validated field type
	Type FieldType `json:"type" yaml:"type"`

	// Required marks the field as mandatory on create
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
}

// Endpoint describes a REST resource to generate.
type Endpoint struct {
	// Name is the resource name as typed by the user (e.g. "users", "order-items")
	Name string `json:"name" yaml:"name"`

	// Path is the mount path in the router aggregation file (e.g. "/users")
	Path string `json:"path" yaml:"path"`

	// Methods are the HTTP methods the resource exposes
	Methods []Method `json:"methods" yaml:"methods"`

	// Fields are the resource properties
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Repository enables the data-access artifact
	Repository bool `json:"repository" yaml:"repository"`
}

// HasMethod reports whether the endpoint exposes m.
func (e *Endpoint) HasMethod(m Method) bool {
	for _, have := range e.Methods {
		if have == m {
			return true
		}
	}
	return false
}

// Validate checks the endpoint can be generated.
func (e *Endpoint) Validate() error {
	var errs []error

	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, errors.New("endpoint name is required"))
	}
	if e.Path != "" && !strings.HasPrefix(e.Path, "/") {
		errs = append(errs, fmt.Errorf("endpoint path %q must start with '/'", e.Path))
	}
	if len(e.Methods) == 0 {
		errs = append(errs, errors.New("at least one method is required"))
	}

	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		if f.Name == "" {
			errs = append(errs, errors.New("field name is required"))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("duplicate field %q", f.Name))
		}
		seen[f.Name] = true
		if !fieldTypes[f.Type] {
			errs = append(errs, fmt.Errorf("field %q has unknown type %q", f.Name, f.Type))
		}
	}

	return errors.Join(errs...)
}

// ParseMethods parses a comma-separated method list such as "get,post".
// An empty string yields every method.
func ParseMethods(s string) ([]Method, error) {
	if strings.TrimSpace(s) == "" {
		return append([]Method(nil), AllMethods...), nil
	}

	var methods []Method
	seen := make(map[Method]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := Method(strings.ToUpper(part))
		if !isMethod(m) {
			return nil, fmt.Errorf("unknown method %q", part)
		}
		if !seen[m] {
			seen[m] = true
			methods = append(methods, m)
		}
	}
	return methods, nil
}

func isMethod(m Method) bool {
	for _, known := range AllMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseFields parses a field list such as "name:string:required,age:number".
// The type defaults to string.
func ParseFields(s string) ([]Field, error) {
	var fields []Field
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		segs := strings.Split(part, ":")
		if len(segs) > 3 {
			return nil, fmt.Errorf("invalid field %q: expected name[:type[:required]]", part)
		}

		f := Field{Name: strings.TrimSpace(segs[0]), Type: FieldString}
		if f.Name == "" {
			return nil, fmt.Errorf("invalid field %q: name is empty", part)
		}
		if len(segs) > 1 && strings.TrimSpace(segs[1]) != "" {
			f.Type = FieldType(strings.ToLower(strings.TrimSpace(segs[1])))
			if !fieldTypes[f.Type] {
				return nil, fmt.Errorf("invalid field %q: unknown type %q", part, segs[1])
			}
		}
		if len(segs) == 3 {
			switch strings.ToLower(strings.TrimSpace(segs[2])) {
			case "required", "req", "!":
				f.Required = true
			case "optional", "opt", "?", "":
			default:
				return nil, fmt.Errorf("invalid field %q: unknown modifier %q", part, segs[2])
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}
