package model

import (
	"errors"
	"fmt"
)

// ErrUnexpectedShape marks a boundary response that did not carry the expected fields.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// ShapeError reports a missing or mistyped field in a decoded boundary response.
type ShapeError struct {
	Method string
	Field  string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: field %q missing", e.Method, e.Field)
	}
	return fmt.Sprintf("%s: field %q: %v", e.Method, e.Field, e.Err)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnexpectedShape) match every ShapeError.
func (e *ShapeError) Is(target error) bool {
	return target == ErrUnexpectedShape
}
