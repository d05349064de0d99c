package schema

import "github.com/getkin/kin-openapi/openapi3"

// Field describes one property of an object schema.
type Field struct {
	Name     string
	Schema   *openapi3.Schema
	Optional bool
}

// Req declares a required property.
func Req(name string, s *openapi3.Schema) Field { return Field{Name: name, Schema: s} }

// Opt declares an optional property. Null is accepted for optional properties.
func Opt(name string, s *openapi3.Schema) Field {
	return Field{Name: name, Schema: s.WithNullable(), Optional: true}
}

// Object builds an object schema. Properties not listed are tolerated.
func Object(fields ...Field) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	var required []string
	for _, f := range fields {
		s = s.WithProperty(f.Name, f.Schema)
		if !f.Optional {
			required = append(required, f.Name)
		}
	}
	s.Required = required
	return s
}

// Array builds an array schema with the given item schema.
func Array(items *openapi3.Schema) *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(items)
}

// Map builds an object schema whose every value matches the given schema.
func Map(values *openapi3.Schema) *openapi3.Schema {
	return openapi3.NewObjectSchema().WithAdditionalProperties(values)
}

func String() *openapi3.Schema { return openapi3.NewStringSchema() }

func Number() *openapi3.Schema { return openapi3.NewFloat64Schema() }

func Integer() *openapi3.Schema { return openapi3.NewIntegerSchema() }

func Bool() *openapi3.Schema { return openapi3.NewBoolSchema() }

// Enum builds a string schema restricted to the given values.
func Enum(values ...string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return s
}
