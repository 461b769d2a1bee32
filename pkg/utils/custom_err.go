package utils

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of pipeline failure classes. Every external
// call site translates transport or parse failures into one of these before
// returning; nothing unclassified crosses a stage boundary.
type ErrorKind string

const (
	KindValidation            ErrorKind = "validation"
	KindDependencyUnavailable ErrorKind = "dependency_unavailable"
	KindDependencyRejected    ErrorKind = "dependency_rejected"
	KindEmptyResult           ErrorKind = "empty_result"
	KindReorderParse          ErrorKind = "reorder_parse"
)

// PipelineError carries structured context alongside the kind: the stage
// that failed, the offending field for validation failures, and the upstream
// status code for rejected calls.
type PipelineError struct {
	Kind       ErrorKind
	Stage      string
	Field      string
	StatusCode int
	Message    string
	Err        error
}

func (e *PipelineError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Stage != "":
		return fmt.Sprintf("%s: stage %s: %s", e.Kind, e.Stage, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *PipelineError) Unwrap() error { return e.Err }

func NewValidationError(field, message string) *PipelineError {
	return &PipelineError{Kind: KindValidation, Field: field, Message: message}
}

func NewDependencyUnavailable(stage string, err error) *PipelineError {
	msg := "dependency unavailable"
	if err != nil {
		msg = err.Error()
	}
	return &PipelineError{Kind: KindDependencyUnavailable, Stage: stage, Message: msg, Err: err}
}

func NewDependencyRejected(stage string, statusCode int, message string) *PipelineError {
	return &PipelineError{Kind: KindDependencyRejected, Stage: stage, StatusCode: statusCode, Message: message}
}

func NewEmptyResultError(stage, message string) *PipelineError {
	return &PipelineError{Kind: KindEmptyResult, Stage: stage, Message: message}
}

func NewReorderParseError(err error) *PipelineError {
	msg := "unparsable reorder response"
	if err != nil {
		msg = err.Error()
	}
	return &PipelineError{Kind: KindReorderParse, Stage: "reorder", Message: msg, Err: err}
}

// KindOf classifies any error; wrapped PipelineErrors keep their kind,
// everything else is treated as an unavailable dependency.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindDependencyUnavailable
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
