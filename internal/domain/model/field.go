// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
)

// ErrUnknownField is returned by ParseField for names outside the allowed set.
var ErrUnknownField = errors.New("unknown field")

// Field names one of the numeric attributes a measurement carries.
// The set is closed: only the constants below are valid.
type Field uint8

// Allowed fields. Append new ones before fieldCount.
const (
	Field1 Field = iota + 1
	Field2
	Field3

	fieldCount = iota
)

var fieldNames = [...]string{
	Field1: "field1",
	Field2: "field2",
	Field3: "field3",
}

// Fields returns every allowed field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field1; int(f) <= fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// FieldNames returns the allowed field names in declaration order.
func FieldNames() []string {
	fields := Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return names
}

// ParseField resolves a field by its exact, case-sensitive name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields() {
		if fieldNames[f] == name {
			return f, nil
		}
	}
	return 0, ErrUnknownField
}

// Valid reports whether f is one of the allowed fields.
func (f Field) Valid() bool {
	return f >= Field1 && int(f) <= fieldCount
}

// String returns the wire name of the field.
func (f Field) String() string {
	if !f.Valid() {
		return "field(invalid)"
	}
	return fieldNames[f]
}

// Column returns the storage column backing the field. Column names are
// identical to wire names and never derived from user input.
func (f Field) Column() string {
	return f.String()
}

// AllowedList renders the allowed names for error messages, e.g. "field1, field2, field3".
func AllowedList() string {
	return strings.Join(FieldNames(), ", ")
}
