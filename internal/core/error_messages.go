package core

// Error Codes Reference
//
// User-facing messages carry a code that can be quoted to support staff.
// Codes are grouped by category:
//
//	VAL001 - Validation failed: one or more fields hold invalid values
//	         Patterns: "validation failed"
//	VAL002 - Schema error: the form header is malformed
//	         Patterns: "schema error", "invalid form"
//	VAL003 - Unknown column: the field is not part of the form
//	         Patterns: "column not found"
//	VAL004 - Wrong column kind: the action does not apply to the field
//	         Patterns: "operation does not apply"
//
//	ROW001 - Row not found: the row was removed or never existed
//	ROW002 - Row not editable: the row is not in edit mode
//	ROW003 - Row not revertable: new rows can only be deleted
//
//	SES001 - Session expired: the editing session is gone
//	SES002 - Too many sessions: the server holds too many open editors
//	SES003 - Too many submits: the server is saving other forms
//	FRM001 - Unknown form
//
//	DB001 - Connection refused
//	DB002 - Connection reset
//	DB003 - Timeout
//	DB004 - Storage closed
//
//	REQ001 - Request cancelled
//	RATE001 - Rate limited
//	ERR000 - Unknown error; check the application log for the technical error
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so specific patterns are listed before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Validation errors come first: their text embeds user input, which must
// not be matched against the later patterns.
var errorPatterns = []errorPattern{
	// Validation and schema errors (VAL001-VAL004)
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "Some fields hold invalid values",
			Action:  "Correct the highlighted fields and save again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "schema error",
		msg: UserMessage{
			Message: "The form definition is invalid",
			Action:  "Check the column classes of the form",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The form definition is invalid",
			Action:  "Check the column classes of the form",
			Code:    "VAL002",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "This field is not part of the form",
			Action:  "Reload the form and try again",
			Code:    "VAL003",
		},
	},
	{
		pattern: "operation does not apply",
		msg: UserMessage{
			Message: "This action does not apply to the field",
			Action:  "Reload the form and try again",
			Code:    "VAL004",
		},
	},

	// Row errors (ROW001-ROW003)
	{
		pattern: "row not found",
		msg: UserMessage{
			Message: "The row no longer exists",
			Action:  "Reload the form to see the current rows",
			Code:    "ROW001",
		},
	},
	{
		pattern: "not being edited",
		msg: UserMessage{
			Message: "The row is not in edit mode",
			Action:  "Click edit on the row first",
			Code:    "ROW002",
		},
	},
	{
		pattern: "cannot be reverted",
		msg: UserMessage{
			Message: "New rows cannot be reverted",
			Action:  "Delete the row instead",
			Code:    "ROW003",
		},
	},

	// Session and form errors (SES001-SES003, FRM001)
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Editing session expired",
			Action:  "Reload the form. Unsaved changes were lost",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many editing sessions",
		msg: UserMessage{
			Message: "Too many forms are open",
			Action:  "Please wait a moment and try again",
			Code:    "SES002",
		},
	},
	{
		pattern: "too many submits",
		msg: UserMessage{
			Message: "The server is busy saving other forms",
			Action:  "Please wait a moment and save again",
			Code:    "SES003",
		},
	},
	{
		pattern: "unknown form",
		msg: UserMessage{
			Message: "Form not found",
			Action:  "Verify the form name is correct",
			Code:    "FRM001",
		},
	},

	// Storage errors (DB001-DB004)
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "storage closed",
		msg: UserMessage{
			Message: "The server is shutting down",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},

	// Request errors
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
