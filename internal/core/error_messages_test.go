package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/sheets/internal/grid"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "index error", err: grid.CheckIndex(grid.AxisRow, 9, 3), wantCode: "IDX001"},
		{name: "wrapped index error", err: fmt.Errorf("apply: %w", grid.CheckIndex(grid.AxisSheet, 2, 1)), wantCode: "IDX001"},
		{name: "no row selected", err: ErrNoRowSelected, wantCode: "SEL001"},
		{name: "no column selected", err: ErrNoColumnSelected, wantCode: "SEL002"},
		{name: "last row", err: grid.ErrLastRow, wantCode: "SHT001"},
		{name: "last column", err: grid.ErrLastColumn, wantCode: "SHT002"},
		{name: "unknown action", err: fmt.Errorf("%w: %q", ErrUnknownAction, "explode"), wantCode: "SHT003"},
		{name: "read only", err: ErrReadOnly, wantCode: "EDIT001"},
		{name: "empty import", err: ErrNoSheets, wantCode: "FILE005"},
		{name: "session not found", err: fmt.Errorf("%w: abc", ErrSessionNotFound), wantCode: "SES001"},
		{name: "too many sessions", err: ErrTooManySessions, wantCode: "SES002"},
		{name: "too many imports", err: ErrTooManyImports, wantCode: "SES003"},
		{name: "deadline", err: fmt.Errorf("import a.xlsx: %w", context.DeadlineExceeded), wantCode: "SES004"},
		{name: "file too large", err: errors.New("http: request body too large"), wantCode: "FILE001"},
		{name: "unsupported format", err: errors.New("unsupported format \".pdf\""), wantCode: "FILE002"},
		{name: "corrupt zip", err: errors.New("zip: not a valid zip file"), wantCode: "FILE003"},
		{name: "csv parse error", err: errors.New("record on line 2: wrong number of fields; parse error"), wantCode: "FILE003"},
		{name: "bad request body", err: errors.New("invalid request body: unexpected EOF"), wantCode: "REQ001"},
		{name: "rate limited", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "unknown error", err: errors.New("something strange"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Errorf("MapError(%v) returned empty message", tt.err)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrNoRowSelected)
	if !strings.Contains(got, "(Code: SEL001)") {
		t.Errorf("FormatUserError = %q, want code reference", got)
	}
	if !strings.HasPrefix(got, "No row is selected") {
		t.Errorf("FormatUserError = %q, want message first", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrReadOnly) {
		t.Error("ErrReadOnly should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unknown error should not be user facing")
	}
}
