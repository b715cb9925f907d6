// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

// =============================================================================
// COMMAND KINDS
// =============================================================================

// Kind names a command for logs, help and the journal.
type Kind string

const (
	KindPause              Kind = "pause"
	KindExit               Kind = "exit"
	KindHelp               Kind = "help"
	KindCreateFromTemplate Kind = "create_from_template"
	KindCreateTable        Kind = "create_table"
	KindNextRow            Kind = "next_row"
	KindSkipCell           Kind = "skip_cell"
	KindUndo               Kind = "undo"
	KindInsertRow          Kind = "insert_row"
	KindSave               Kind = "save"
	KindEditAt             Kind = "edit_at"
	KindReturnToPrevious   Kind = "return_to_previous"
	KindDeleteRow          Kind = "delete_row"
	KindSetValue           Kind = "set_value"
)

// =============================================================================
// COMMAND VALUES
// =============================================================================

// Command is one structured edit intent. The set of implementations is
// closed; consumers dispatch with a type switch.
type Command interface {
	Kind() Kind
	command()
}

// CreateTable creates a new active table.
type CreateTable struct {
	Name    string
	Headers []string
}

// CreateFromTemplate creates a table from a catalogue entry. Name and
// Headers are resolved from the catalogue at interpretation time.
type CreateFromTemplate struct {
	ID      int
	Name    string
	Headers []string
}

// NextRow forces the cursor onto the next row.
type NextRow struct{}

// SkipCell leaves the current cell as a placeholder.
type SkipCell struct{}

// Undo reverts the last edit.
type Undo struct{}

// Save exports the active table and releases it. FileName is empty when the
// table name should be used.
type Save struct {
	FileName string
}

// EditAt repositions the cursor. Row and Col are 0-based.
type EditAt struct {
	Row    int
	Col    int
	Column string
}

// DeleteRow removes a row (0-based).
type DeleteRow struct {
	Row int
}

// InsertRow inserts a blank row before Row (0-based).
type InsertRow struct {
	Row int
}

// ReturnToPrevious moves back to the cursor saved by the last EditAt.
type ReturnToPrevious struct{}

// Help prints the command reference.
type Help struct{}

// Pause suspends interpretation until the resume phrase is heard.
type Pause struct{}

// Exit ends the session.
type Exit struct{}

// SetValue writes normalized text into the current cell.
type SetValue struct {
	Text string
}

func (CreateTable) Kind() Kind        { return KindCreateTable }
func (CreateFromTemplate) Kind() Kind { return KindCreateFromTemplate }
func (NextRow) Kind() Kind            { return KindNextRow }
func (SkipCell) Kind() Kind           { return KindSkipCell }
func (Undo) Kind() Kind               { return KindUndo }
func (Save) Kind() Kind               { return KindSave }
func (EditAt) Kind() Kind             { return KindEditAt }
func (DeleteRow) Kind() Kind          { return KindDeleteRow }
func (InsertRow) Kind() Kind          { return KindInsertRow }
func (ReturnToPrevious) Kind() Kind   { return KindReturnToPrevious }
func (Help) Kind() Kind               { return KindHelp }
func (Pause) Kind() Kind              { return KindPause }
func (Exit) Kind() Kind               { return KindExit }
func (SetValue) Kind() Kind           { return KindSetValue }

func (CreateTable) command()        {}
func (CreateFromTemplate) command() {}
func (NextRow) command()            {}
func (SkipCell) command()           {}
func (Undo) command()               {}
func (Save) command()               {}
func (EditAt) command()             {}
func (DeleteRow) command()          {}
func (InsertRow) command()          {}
func (ReturnToPrevious) command()   {}
func (Help) command()               {}
func (Pause) command()              {}
func (Exit) command()               {}
func (SetValue) command()           {}
