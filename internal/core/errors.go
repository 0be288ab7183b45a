package core

// errors.go defines the failure taxonomy of the ingestion and stockout
// operations. Every failure carries a machine-checkable Kind and a
// human-readable Detail; warehouse failures also wrap the underlying cause.
//
// Validation kinds are always reported before any warehouse call is made.

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindInvalidExtension    Kind = "InvalidExtension"
	KindInvalidFormat       Kind = "InvalidFormat"
	KindMalformedMapping    Kind = "MalformedMapping"
	KindIncompleteMapping   Kind = "IncompleteMapping"
	KindUnknownSourceColumn Kind = "UnknownSourceColumn"
	KindSinkFailure         Kind = "SinkFailure"
	KindSourceFailure       Kind = "SourceFailure"
)

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Detail string   // human-readable description
	Fields []string // offending field or column names, when the kind names them
	Err    error    // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so the sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrInvalidExtension    = &Error{Kind: KindInvalidExtension}
	ErrInvalidFormat       = &Error{Kind: KindInvalidFormat}
	ErrMalformedMapping    = &Error{Kind: KindMalformedMapping}
	ErrIncompleteMapping   = &Error{Kind: KindIncompleteMapping}
	ErrUnknownSourceColumn = &Error{Kind: KindUnknownSourceColumn}
	ErrSinkFailure         = &Error{Kind: KindSinkFailure}
	ErrSourceFailure       = &Error{Kind: KindSourceFailure}
)

// ErrUnknownTable is returned when an ingest names a table key with no
// registered definition.
var ErrUnknownTable = errors.New("unknown table")

// KindOf returns the Kind of err, or "" if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidation reports whether err is one of the request-validation kinds
// (as opposed to a warehouse failure).
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindInvalidExtension, KindInvalidFormat, KindMalformedMapping,
		KindIncompleteMapping, KindUnknownSourceColumn:
		return true
	}
	return false
}

func invalidExtension(filename string) *Error {
	return &Error{
		Kind:   KindInvalidExtension,
		Detail: fmt.Sprintf("invalid file type %q, please upload a CSV file", filename),
	}
}

func invalidFormat(err error) *Error {
	return &Error{
		Kind:   KindInvalidFormat,
		Detail: fmt.Sprintf("invalid csv: %v", err),
		Err:    err,
	}
}

func malformedMapping(detail string, err error) *Error {
	return &Error{
		Kind:   KindMalformedMapping,
		Detail: "invalid column mapping: " + detail,
		Err:    err,
	}
}

func incompleteMapping(missing []string) *Error {
	return &Error{
		Kind:   KindIncompleteMapping,
		Detail: "missing required column mappings: " + strings.Join(missing, ", "),
		Fields: missing,
	}
}

func unknownSourceColumn(names []string) *Error {
	return &Error{
		Kind:   KindUnknownSourceColumn,
		Detail: "column mapping references non-existent columns: " + strings.Join(names, ", "),
		Fields: names,
	}
}

func sinkFailure(table string, err error) *Error {
	return &Error{
		Kind:   KindSinkFailure,
		Detail: fmt.Sprintf("warehouse load into %s failed: %v", table, err),
		Err:    err,
	}
}

func sourceFailure(table string, err error) *Error {
	return &Error{
		Kind:   KindSourceFailure,
		Detail: fmt.Sprintf("warehouse query of %s failed: %v", table, err),
		Err:    err,
	}
}
