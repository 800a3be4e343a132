package models

import (
	"fmt"
	"strings"
)

// FieldError is one field-level validation failure, shaped like the
// error entries the web client already renders.
type FieldError struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

func NewFieldError(path, msg string) FieldError {
	return FieldError{Type: "field", Msg: msg, Path: path, Location: "body"}
}

// NewQueryFieldError reports a bad query-string parameter.
func NewQueryFieldError(path, msg string) FieldError {
	return FieldError{Type: "field", Msg: msg, Path: path, Location: "query"}
}

// ValidationError aggregates every violated field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Paths(), ", "))
}

// Paths lists the violated field paths in report order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}
