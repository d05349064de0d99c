// Package apperr defines the error taxonomy shared by the ingestion pipeline.
//
// Every error carries its kind and the context needed to act on it, so callers
// can tell upstream shape drift from an upstream outage from bad user input.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awardrobe/pricetracker/pkg/zerror"
)

const (
	ValidationErrorCode       = "VALIDATION_FAILED"
	UpstreamUnavailableCode   = "UPSTREAM_UNAVAILABLE"
	UpstreamSchemaChangedCode = "UPSTREAM_SCHEMA_CHANGED"
	InvalidProductURLCode     = "INVALID_PRODUCT_URL"
	NotFoundCode              = "NOT_FOUND"
	ConflictCode              = "CONFLICT"
	UnsupportedStoreCode      = "UNSUPPORTED_STORE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	upstreamUnavailableErr   = zerror.NewBadGateway(UpstreamUnavailableCode, "upstream store request failed")
	upstreamSchemaChangedErr = zerror.NewBadGateway(UpstreamSchemaChangedCode, "upstream store response has an unexpected shape")
	invalidProductURLErr     = zerror.NewBadRequest(InvalidProductURLCode, "url does not contain a product code")
	notFoundErr              = zerror.NewNotFound(NotFoundCode, "resource not found")
	conflictErr              = zerror.NewConflict(ConflictCode, "resource already exists")
	unsupportedStoreErr      = zerror.NewUnprocessableEntity(UnsupportedStoreCode, "store is not supported")
)

// Coder is implemented by errors that render as a ZError at system boundaries.
type Coder interface {
	error
	ZError() zerror.ZError
}

var (
	_ Coder = (*NetworkError)(nil)
	_ Coder = (*ParseError)(nil)
	_ Coder = (*InvalidURLError)(nil)
	_ Coder = (*NotFoundError)(nil)
	_ Coder = (*ConflictError)(nil)
	_ Coder = (*UnsupportedStoreError)(nil)
)

// NetworkError is a transport or status failure talking to an upstream store.
// URL is empty when the request never left the process (proxy selection).
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	var b strings.Builder
	b.WriteString("network error")
	if e.URL != "" {
		fmt.Fprintf(&b, " url=%s", e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " status=%d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) ZError() zerror.ZError { return upstreamUnavailableErr.WrapParent(e) }

// ParseError means an upstream payload did not match the shape we expect.
// Path is a JSON pointer to the offending value.
type ParseError struct {
	Source string
	Path   string
	Reason string
	// Status is the value of a string status sentinel that differed from the
	// expected one. It stays empty when the sentinel was missing or mistyped.
	Status string
}

func (e *ParseError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	if e.Source != "" {
		return fmt.Sprintf("parse error source=%s path=%s: %s", e.Source, path, e.Reason)
	}
	return fmt.Sprintf("parse error path=%s: %s", path, e.Reason)
}

func (e *ParseError) ZError() zerror.ZError { return upstreamSchemaChangedErr.WrapParent(e) }

// InvalidURLError is returned when a user supplied URL holds no product code.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid product url %q", e.URL)
}

func (e *InvalidURLError) ZError() zerror.ZError { return invalidProductURLErr.WrapParent(e) }

// NotFoundError reports a resource that does not exist, upstream or locally.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) ZError() zerror.ZError {
	return notFoundErr.WithMsg("%s not found", e.Resource).WrapParent(e)
}

// ConflictError reports a duplicate product or a duplicate normalized variant.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

func (e *ConflictError) ZError() zerror.ZError {
	return conflictErr.WithMsg("%s already exists", e.Resource).WrapParent(e)
}

// UnsupportedStoreError is returned when no adapter matches a URL or handle.
type UnsupportedStoreError struct {
	Input string
}

func (e *UnsupportedStoreError) Error() string {
	return fmt.Sprintf("no store adapter matches %q", e.Input)
}

func (e *UnsupportedStoreError) ZError() zerror.ZError { return unsupportedStoreErr.WrapParent(e) }

// IsRetryable reports whether err may succeed when tried again later.
// Only network failures qualify; shape drift and bad input never do.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsParse reports whether err signals upstream schema drift.
func IsParse(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

// Kind returns a short label for err, used in logs and metric labels.
func Kind(err error) string {
	var (
		netErr         *NetworkError
		parseErr       *ParseError
		urlErr         *InvalidURLError
		nfErr          *NotFoundError
		conflictErr    *ConflictError
		unsupportedErr *UnsupportedStoreError
	)
	switch {
	case errors.As(err, &parseErr):
		return "upstream_schema_drift"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &urlErr):
		return "invalid_url"
	case errors.As(err, &nfErr):
		return "not_found"
	case errors.As(err, &conflictErr):
		return "conflict"
	case errors.As(err, &unsupportedErr):
		return "unsupported_store"
	default:
		return "internal"
	}
}
