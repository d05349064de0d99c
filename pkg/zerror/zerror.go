// Package zerror carries a stable code and a caller-safe message next to an
// underlying error.
package zerror

import (
	"fmt"
)

// ZError pairs a status and a stable code with a message that is safe to
// return to API callers. The parent error is never rendered to callers.
type ZError struct {
	parent error
	status Status
	code   string
	msg    string
}

// New initializes a ZError.
//
// code example: PRODUCT_NOT_FOUND
func New(status Status, code, msg string) ZError {
	return ZError{status: status, code: code, msg: msg}
}

func (e ZError) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.parent)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// WrapParent returns a copy of e carrying parent.
func (e ZError) WrapParent(parent error) ZError {
	e.parent = parent
	return e
}

// WithMsg returns a copy of e with a different caller-facing message.
func (e ZError) WithMsg(format string, args ...any) ZError {
	e.msg = fmt.Sprintf(format, args...)
	return e
}

func (e ZError) Unwrap() error { return e.parent }

// Is matches any ZError with the same code, so predefined errors work as
// sentinels after WrapParent.
func (e ZError) Is(target error) bool {
	t, ok := target.(ZError)
	return ok && t.code == e.code
}

func (e ZError) Status() Status { return e.status }
func (e ZError) Code() string { return e.code }
func (e ZError) Msg() string { return e.msg }
func (e ZError) Parent() error { return e.parent }

func NewBadRequest(code, msg string) ZError {
	return New(StatusBadRequest, code, msg)
}

func NewValidationFailed(code, msg string) ZError {
	return New(StatusValidationFailed, code, msg)
}

func NewNotFound(code, msg string) ZError {
	return New(StatusNotFound, code, msg)
}

func NewConflict(code, msg string) ZError {
	return New(StatusConflict, code, msg)
}

func NewUnprocessableEntity(code, msg string) ZError {
	return New(StatusUnprocessableEntity, code, msg)
}

func NewBadGateway(code, msg string) ZError {
	return New(StatusBadGateway, code, msg)
}

func NewInternalServerError(code, msg string) ZError {
	return New(StatusInternalServerError, code, msg)
}
