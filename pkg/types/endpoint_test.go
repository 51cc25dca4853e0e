// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethods(t *testing.T) {
	tests := []struct {
		input    string
		expected []Method
		wantErr  bool
	}{
		{"", AllMethods, false},
		{"get,post", []Method{MethodGet, MethodPost}, false},
		{" GET , delete ", []Method{MethodGet, MethodDelete}, false},
		{"get,get", []Method{MethodGet}, false},
		{"get,options", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMethods(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields("name:string:required, age:number,email:email,active:boolean:optional,id")
	require.NoError(t, err)
	assert.Equal(t, []Field{
		{Name: "name", Type: FieldString, Required: true},
		{Name: "age", Type: FieldNumber},
		{Name: "email", Type: FieldEmail},
		{Name: "active", Type: FieldBoolean},
		{Name: "id", Type: FieldString},
	}, fields)

	fields, err = ParseFields("")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestParseFields_Errors(t *testing.T) {
	for _, input := range []string{
		":string",
		"name:money",
		"name:string:maybe",
		"a:b:c:d",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFields(input)
			assert.Error(t, err)
		})
	}
}

func TestEndpoint_Validate(t *testing.T) {
	ep := &Endpoint{
		Name:    "users",
		Path:    "/users",
		Methods: []Method{MethodGet},
		Fields:  []Field{{Name: "name", Type: FieldString}},
	}
	assert.NoError(t, ep.Validate())

	bad := &Endpoint{
		Path:   "users",
		Fields: []Field{{Name: "a", Type: "x"}, {Name: "a", Type: FieldString}},
	}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "must start with '/'")
	assert.Contains(t, err.Error(), "at least one method")
	assert.Contains(t, err.Error(), "unknown type")
	assert.Contains(t, err.Error(), "duplicate field")
}

func TestMethodHelpers(t *testing.T) {
	assert.Equal(t, "delete", MethodDelete.Lower())
	assert.True(t, MethodPatch.HasBody())
	assert.False(t, MethodGet.HasBody())

	ep := &Endpoint{Methods: []Method{MethodGet, MethodPost}}
	assert.True(t, ep.HasMethod(MethodPost))
	assert.False(t, ep.HasMethod(MethodDelete))
}

func TestFieldType_TSType(t *testing.T) {
	assert.Equal(t, "string", FieldEmail.TSType())
	assert.Equal(t, "string", FieldUUID.TSType())
	assert.Equal(t, "number", FieldNumber.TSType())
	assert.Equal(t, "Date", FieldDate.TSType())
}
