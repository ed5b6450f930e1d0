// Package core provides the workbook model and the editing service.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, the sheetctl CLI, or tests without
// modification. Cell storage and sorting live in the grid package; file
// formats are plugged in through [Importer] and [Exporter].
//
// # Workbook
//
// A [Workbook] is an ordered list of sheets plus the active sheet, the
// current row or column selection and the edit mode flag. Every change is
// expressed as an [Action] and applied with [Workbook.Apply]:
//
//	w := core.NewWorkbook()
//	_ = w.Apply(core.Action{Kind: core.ActionSetCell, Row: 0, Col: 0, Value: "10"})
//	_ = w.Apply(core.Action{Kind: core.ActionSelectColumn, Col: 0})
//	_ = w.Apply(core.Action{Kind: core.ActionSortColumn})
//
// Structural operations consume the selection; sorting keeps it. Failed
// operations leave the workbook unchanged.
//
// # Sessions
//
// The [Service] keys one workbook per session id. Operations on a session
// are serialized; different sessions proceed in parallel. Idle sessions
// are saved to a [SessionStore] and evicted by the sweeper, then restored
// transparently on the next request.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - IDX001: Index out of range
//   - SEL001-SEL002: Missing row or column selection
//   - SHT001-SHT003: Sheet structure errors
//   - EDIT001: Edit mode is off
//   - FILE001-FILE005: File errors (size, format, corrupt, empty)
//   - SES001-SES004: Session and import capacity errors
//
// # Audit Logging
//
// Data changes are recorded through the structured logger with severity
// levels, and the most recent entries of each session are kept in memory:
//
//   - Low: Session creation, exports, new sheets
//   - Medium: Cell edits, sorts
//   - High: Imports, row and column insertion or deletion
//   - Critical: Workbook resets, closed sessions
package core
