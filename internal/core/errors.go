package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrImportRunning is returned by Importer.Run while another run of the same
// Importer has not finished.
var ErrImportRunning = errors.New("an import is already running")

// ErrInvalidUTF8 is wrapped by the ParseError of a field that is not valid
// UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ErrEmptyFile is returned when a resource has no header line.
var ErrEmptyFile = errors.New("empty file")

// FetchError reports a resource that could not be downloaded or opened.
type FetchError struct {
	Resource   Resource
	StatusCode int // HTTP status when the server answered, otherwise 0
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Resource, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a row that could not be decoded.
type ParseError struct {
	Resource Resource
	Line     int
	Column   string // header name, empty when the whole row is malformed
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("parse %s line %d: %v", e.Resource, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s line %d column %q value %q: %v", e.Resource, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a resource whose header lacks required columns.
type SchemaError struct {
	Resource Resource
	Missing  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: missing required column(s) %s", e.Resource, strings.Join(e.Missing, ", "))
}

// ReferentialError reports a row whose foreign key points at a missing parent.
type ReferentialError struct {
	Entity Entity
	ID     int64 // offending row id when known
	Err    error
}

func (e *ReferentialError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("insert %s %d: foreign key constraint violated: %v", e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("insert %s: foreign key constraint violated: %v", e.Entity, e.Err)
}

func (e *ReferentialError) Unwrap() error { return e.Err }

// DuplicateError reports a primary key collision under ConflictError.
type DuplicateError struct {
	Entity Entity
	ID     int64
	Err    error
}

func (e *DuplicateError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("insert %s %d: duplicate key: %v", e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("insert %s: duplicate key: %v", e.Entity, e.Err)
}

func (e *DuplicateError) Unwrap() error { return e.Err }
