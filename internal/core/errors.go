package core

import "errors"

// Workbook errors.
var (
	ErrNoSheets         = errors.New("import contains no sheets")
	ErrNoRowSelected    = errors.New("no row selected")
	ErrNoColumnSelected = errors.New("no column selected")
	ErrUnknownAction    = errors.New("unknown action")
	ErrReadOnly         = errors.New("workbook is read-only: edit mode is off")
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
)
