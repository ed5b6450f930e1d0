// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Known sentinel errors are matched with errors.Is first; errors
// coming from file adapters and the store are then matched by substring.
//
// # Index Errors (IDX001-IDX099)
//
//	IDX001 - Out of range: The row, column or sheet does not exist
//	         Action: Refresh the page and select an existing cell
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - No row selected: The operation needs a selected row
//	SEL002 - No column selected: The operation needs a selected column
//
// # Sheet Errors (SHT001-SHT099)
//
//	SHT001 - Last row: A sheet must keep at least one row
//	SHT002 - Last column: A sheet must keep at least one column
//	SHT003 - Unknown action: The requested operation is not supported
//
// # Edit Errors (EDIT001-EDIT099)
//
//	EDIT001 - Read-only: Edit mode is off
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported format
//	FILE003 - Unreadable file (corrupt or not a spreadsheet)
//	FILE004 - No file provided
//	FILE005 - Empty workbook (no sheets)
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found
//	SES002 - Too many sessions
//	SES003 - Import busy
//	SES004 - Request cancelled or timed out
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Malformed request body
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheets/internal/grid"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds is checked in order with errors.Is.
var errorKinds = []errorKind{
	{grid.ErrOutOfRange, UserMessage{"The row, column or sheet does not exist", "Refresh the page and select an existing cell", "IDX001"}},
	{ErrNoRowSelected, UserMessage{"No row is selected", "Click a row number first", "SEL001"}},
	{ErrNoColumnSelected, UserMessage{"No column is selected", "Click a column header first", "SEL002"}},
	{grid.ErrLastRow, UserMessage{"A sheet must keep at least one row", "Clear the row's cells instead", "SHT001"}},
	{grid.ErrLastColumn, UserMessage{"A sheet must keep at least one column", "Clear the column's cells instead", "SHT002"}},
	{ErrUnknownAction, UserMessage{"This operation is not supported", "Reload the page to get the latest editor", "SHT003"}},
	{ErrReadOnly, UserMessage{"The workbook is read-only", "Click Edit to turn on edit mode", "EDIT001"}},
	{ErrNoSheets, UserMessage{"The file contains no sheets", "Upload a workbook with at least one sheet", "FILE005"}},
	{ErrSessionNotFound, UserMessage{"Your editing session was not found", "Open the editor again to start a new session", "SES001"}},
	{ErrTooManySessions, UserMessage{"Too many workbooks are open", "Please try again in a few minutes", "SES002"}},
	{ErrTooManyImports, UserMessage{"Too many files are being imported", "Please wait a moment and try again", "SES003"}},
	{context.Canceled, UserMessage{"Request was cancelled", "Please try again", "SES004"}},
	{context.DeadlineExceeded, UserMessage{"Request timed out", "Try a smaller file or try again later", "SES004"}},
}

// errorPattern maps a lowercase substring of a technical error to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers errors produced outside this package, mostly by file
// parsers. The first matching pattern wins.
var errorPatterns = []errorPattern{
	{"file too large", UserMessage{"File exceeds the maximum size limit", "Split the workbook into smaller files", "FILE001"}},
	{"request body too large", UserMessage{"File exceeds the maximum size limit", "Split the workbook into smaller files", "FILE001"}},
	{"unsupported format", UserMessage{"This file type is not supported", "Upload an .xlsx, .xls or .csv file", "FILE002"}},
	{"not a valid zip file", UserMessage{"The file could not be read as a spreadsheet", "Check that the file is not corrupt", "FILE003"}},
	{"unreadable", UserMessage{"The file could not be read as a spreadsheet", "Check that the file is not corrupt", "FILE003"}},
	{"parse error", UserMessage{"The file could not be read as a spreadsheet", "Check that the file is not corrupt", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please choose a file to upload", "FILE004"}},
	{"invalid request body", UserMessage{"The request could not be understood", "Reload the page and try again", "REQ001"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
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
