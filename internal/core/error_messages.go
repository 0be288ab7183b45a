package core

// error_messages.go maps failures to user-facing messages with codes for
// support reference. Users quote the code; support looks it up here.
//
// # Classified failures
//
// Failures carrying a Kind map directly:
//
//	FILE002 - InvalidFormat: File is not a valid CSV
//	FILE006 - InvalidExtension: File is not a .csv file
//	MAP001  - MalformedMapping: Column mapping is not a JSON object of strings
//	MAP002  - IncompleteMapping: Column mapping leaves required fields unmapped
//	MAP003  - UnknownSourceColumn: Column mapping names columns the file lacks
//	WH001   - SinkFailure: Loading into the warehouse failed
//	WH002   - SourceFailure: Reading from the warehouse failed
//
// Warehouse failures are first matched against the connection patterns below
// using their underlying cause, so a refused connection reports DB004 rather
// than the generic WH001.
//
// # Sentinels
//
//	UPL002  - ErrTooManyUploads: System is busy processing other uploads
//	TBL002  - ErrUnknownTable: Dataset kind is not configured
//
// # Patterns
//
//	DB004   - "connection refused"
//	DB005   - "connection reset"
//	DB006   - "timeout"
//	DB007   - "deadlock"
//	FILE001 - "file too large", "request body too large"
//	FILE004 - "no file provided"
//	UPL004  - "context canceled"
//	UPL005  - "context deadline exceeded"
//
// Patterns are matched case-insensitively using strings.Contains; the first
// matching pattern wins.
//
// # Default Error (ERR000)
//
// When nothing matches, check application logs for the original error.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var kindMessages = map[Kind]UserMessage{
	KindInvalidFormat: {
		Message: "File is not a valid CSV",
		Action:  "Ensure file is comma-separated with a header row and consistent columns",
		Code:    "FILE002",
	},
	KindInvalidExtension: {
		Message: "Invalid file type",
		Action:  "Please upload a CSV file",
		Code:    "FILE006",
	},
	KindMalformedMapping: {
		Message: "Invalid column mapping",
		Action:  `Send column_mapping as a JSON object such as {"SKU": "sku_id"}`,
		Code:    "MAP001",
	},
	KindIncompleteMapping: {
		Message: "Column mapping is missing required fields",
		Action:  "Map a source column to every required field",
		Code:    "MAP002",
	},
	KindUnknownSourceColumn: {
		Message: "Column mapping references columns not in the file",
		Action:  "Use the column names exactly as they appear in the CSV header",
		Code:    "MAP003",
	},
	KindSinkFailure: {
		Message: "Failed to load data into the warehouse",
		Action:  "Please try again or contact support",
		Code:    "WH001",
	},
	KindSourceFailure: {
		Message: "Failed to read data from the warehouse",
		Action:  "Please try again or contact support",
		Code:    "WH002",
	},
}

var (
	tooManyUploadsMessage = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	unknownTableMessage = UserMessage{
		Message: "Unknown dataset type",
		Action:  "Upload inventory or orders",
		Code:    "TBL002",
	}
)

var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the warehouse",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Warehouse connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Warehouse was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
//
// Example:
//
//	err := incompleteMapping([]string{"stock"})
//	msg := MapError(err)
//	// msg.Code == "MAP002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	switch {
	case errors.Is(err, ErrTooManyUploads):
		return tooManyUploadsMessage
	case errors.Is(err, ErrUnknownTable):
		return unknownTableMessage
	}

	var ce *Error
	if errors.As(err, &ce) {
		if (ce.Kind == KindSinkFailure || ce.Kind == KindSourceFailure) && ce.Err != nil {
			if msg, ok := matchPattern(ce.Err); ok {
				return msg
			}
		}
		if msg, ok := kindMessages[ce.Kind]; ok {
			return msg
		}
	}

	if msg, ok := matchPattern(err); ok {
		return msg
	}
	return defaultMessage
}

func matchPattern(err error) (UserMessage, bool) {
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
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

// IsUserFacing reports whether err maps to a specific code rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
