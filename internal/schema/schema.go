// Package schema confirms the shape of upstream payloads before any field is read.
//
// A payload is first decoded into a generic JSON tree and checked against a
// JSON schema. Only a confirmed tree is unmarshalled into the typed struct, so
// callers never observe a partially populated value.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/awardrobe/pricetracker/internal/apperr"
)

// Shape is the expected structure of one upstream endpoint.
type Shape struct {
	// Name identifies the endpoint in errors, e.g. "uniqlo-us/l2s".
	Name   string
	Schema *openapi3.Schema

	// StatusField is an optional top-level sentinel such as "status".
	// Any value other than OKValue is rejected before the schema is checked,
	// since error replies rarely carry the regular body.
	StatusField string
	OKValue     string
}

// Decode validates body against shape and unmarshals it into T.
func Decode[T any](body []byte, shape Shape) (T, error) {
	var out T

	tree, err := decodeTree(body)
	if err != nil {
		return out, &apperr.ParseError{Source: shape.Name, Reason: fmt.Sprintf("invalid json: %v", err)}
	}

	if shape.StatusField != "" {
		if err := checkStatus(tree, shape); err != nil {
			return out, err
		}
	}

	if err := shape.Schema.VisitJSON(tree); err != nil {
		return out, toParseError(shape.Name, err)
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, &apperr.ParseError{Source: shape.Name, Reason: fmt.Sprintf("unmarshal confirmed payload: %v", err)}
	}

	return out, nil
}

// checkStatus tells a reported non-ok status apart from a sentinel that is
// missing or mistyped. Only the former carries ParseError.Status.
func checkStatus(tree any, shape Shape) *apperr.ParseError {
	obj, _ := tree.(map[string]any)
	raw, ok := obj[shape.StatusField]
	status, isString := raw.(string)

	switch {
	case !ok || !isString:
		return &apperr.ParseError{
			Source: shape.Name,
			Path:   "/" + shape.StatusField,
			Reason: "status sentinel is missing or not a string",
		}
	case status != shape.OKValue:
		return &apperr.ParseError{
			Source: shape.Name,
			Path:   "/" + shape.StatusField,
			Reason: fmt.Sprintf("upstream reported status %q", status),
			Status: status,
		}
	default:
		return nil
	}
}

func decodeTree(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after json value")
	}
	return tree, nil
}

func toParseError(source string, err error) *apperr.ParseError {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		path := "/" + strings.Join(schemaErr.JSONPointer(), "/")
		reason := schemaErr.Reason
		if reason == "" {
			reason = schemaErr.Error()
		}
		return &apperr.ParseError{Source: source, Path: path, Reason: reason}
	}
	return &apperr.ParseError{Source: source, Reason: err.Error()}
}
