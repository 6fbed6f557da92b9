package core

// # Error Codes Reference
//
// Codes are grouped by category so operators can quote them when reporting
// a failed import.
//
// # Import Errors
//
//	FETCH001 - Source unavailable: a CSV resource could not be downloaded
//	           Action: Check network access and GEO_CSV_BASE_URL
//	PARSE001 - Bad row: a row could not be decoded
//	           Action: Inspect the reported line and column upstream
//	SCHEMA001 - Header mismatch: a file lacks required columns
//	           Action: The upstream layout changed; update the column mapping
//	REF001   - Missing parent: a row references a record that does not exist
//	           Action: Re-run the full import so parents load first
//	DUP001   - Duplicate key: a row's id already exists
//	           Action: Use IMPORT_CONFLICT_POLICY=skip or update
//	NF001    - Not found: no record with that id
//	           Action: Verify the entity and id
//
// # Database Errors (DB004-DB007)
//
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Typed errors are matched first with errors.As. Untyped errors fall back to
// case-insensitive substring patterns; the first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgFetch = UserMessage{
		Message: "A source file could not be downloaded",
		Action:  "Check network access and the configured CSV base URL",
		Code:    "FETCH001",
	}
	msgParse = UserMessage{
		Message: "A row in the source data could not be read",
		Action:  "Inspect the reported line and column in the source file",
		Code:    "PARSE001",
	}
	msgSchema = UserMessage{
		Message: "A source file is missing required columns",
		Action:  "The upstream file layout changed; update the column mapping",
		Code:    "SCHEMA001",
	}
	msgReferential = UserMessage{
		Message: "A record references a parent that does not exist",
		Action:  "Run the full import so parent records load first",
		Code:    "REF001",
	}
	msgDuplicate = UserMessage{
		Message: "A record with this ID already exists",
		Action:  "Set IMPORT_CONFLICT_POLICY to skip or update",
		Code:    "DUP001",
	}
	msgNotFound = UserMessage{
		Message: "Record not found",
		Action:  "Verify the entity name and id",
		Code:    "NF001",
	}
	msgImportRunning = UserMessage{
		Message: "An import is already in progress",
		Action:  "Wait for the current import to finish and try again",
		Code:    "IMP001",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches driver errors that were not translated into a typed
// error. Order matters: more specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "unique constraint", msg: msgDuplicate},
	{pattern: "foreign key constraint", msg: msgReferential},
	{pattern: "violates foreign key", msg: msgReferential},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check DATABASE_URL and that the database is running",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Operation was cancelled",
			Action:  "Run the command again when ready",
			Code:    "CTX001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Increase the timeout or try again",
			Code:    "CTX002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := &FetchError{Resource: ResourceCities, StatusCode: 404}
//	msg := MapError(err)
//	// msg.Code == "FETCH001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		fetchErr  *FetchError
		parseErr  *ParseError
		schemaErr *SchemaError
		refErr    *ReferentialError
		dupErr    *DuplicateError
	)
	switch {
	case errors.As(err, &schemaErr):
		return msgSchema
	case errors.As(err, &parseErr):
		return msgParse
	case errors.As(err, &fetchErr):
		return msgFetch
	case errors.As(err, &refErr):
		return msgReferential
	case errors.As(err, &dupErr):
		return msgDuplicate
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrImportRunning):
		return msgImportRunning
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
