// Package vxerr defines the single error taxonomy surfaced at the
// engine's public boundary, mirroring the VecXError enum vxengine was
// distilled from: every dependency error (database/sql, go-sqlite3,
// the filesystem) is mapped into exactly one Kind.
package vxerr

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
)

// Kind classifies a vxengine failure for callers that want to branch
// on error category without string matching.
type Kind int

const (
	// Other covers connection-pool exhaustion, mutex poisoning, and
	// anything else that doesn't fit a more specific Kind.
	Other Kind = iota
	// ExtensionLoad signals the native ANN library could not be
	// materialized or loaded into a connection.
	ExtensionLoad
	// Sql signals the relational engine rejected a statement.
	Sql
	// InvalidQuery signals the planner received logically
	// inconsistent input (e.g. a required catalog lookup on an empty name).
	InvalidQuery
	// DataParsing signals row materialization or checksum parsing failed.
	DataParsing
	// Io signals a filesystem operation failed.
	Io
)

func (k Kind) String() string {
	switch k {
	case ExtensionLoad:
		return "extension_load"
	case Sql:
		return "sql"
	case InvalidQuery:
		return "invalid_query"
	case DataParsing:
		return "data_parsing"
	case Io:
		return "io"
	default:
		return "other"
	}
}

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new Error of the given kind.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// FromSQL classifies an error returned by database/sql or go-sqlite3.
// sql.ErrNoRows is surfaced as InvalidQuery; every other error that
// isn't already a *Error is surfaced as Sql, since by the time a
// statement reaches the driver it is the relational engine's problem
// (syntax, constraint, missing catalog entry).
func FromSQL(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Wrap(InvalidQuery, err, "no matching row")
	}
	return Wrap(Sql, err, "statement rejected")
}

// FromIO classifies a filesystem error.
func FromIO(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, io.EOF) {
		return Wrap(Io, err, "unexpected end of stream")
	}
	return Wrap(Io, err, "filesystem operation failed")
}

// FromPool classifies a connection-pool acquisition error.
func FromPool(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(Other, err, "connection pool error")
}

// Is reports whether err is a vxengine *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
