// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package undo

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/voxtable/internal/grid"
)

// =============================================================================
// WORKSPACE
// =============================================================================

// Workspace owns the active table and its undo stack. Every grid mutation
// goes through it so that the table and the stack never disagree: a record
// is pushed only when its mutation committed, and a failed mutation leaves
// both untouched.
type Workspace struct {
	table  *grid.Table
	stack  Stack
	logger *zap.Logger
}

// NewWorkspace creates an empty workspace with no active table.
func NewWorkspace(logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{logger: logger.Named("undo")}
}

// Table returns the active table, or nil.
func (w *Workspace) Table() *grid.Table { return w.table }

// HasTable reports whether a table is active.
func (w *Workspace) HasTable() bool { return w.table != nil }

// Depth returns the number of undoable records.
func (w *Workspace) Depth() int { return w.stack.Len() }

// =============================================================================
// MUTATIONS
// =============================================================================

// Create makes a new active table, replacing the current one.
func (w *Workspace) Create(name string, headers []string) error {
	t, err := grid.New(name, headers)
	if err != nil {
		return err
	}
	w.push(Create{Previous: w.table})
	w.table = t
	w.logger.Info("table created",
		zap.String("table", name),
		zap.Strings("columns", headers))
	return nil
}

// SetValue writes value at the cursor. A full row is advanced first, and a
// write that completes a row advances after; each advance is its own record.
// Reports whether the write ended with an automatic advance.
func (w *Workspace) SetValue(value string) (advanced bool, err error) {
	t, err := w.active("set a value")
	if err != nil {
		return false, err
	}

	var pre *grid.Advance
	if t.RowFull() {
		adv := t.AdvanceRow()
		pre = &adv
	}

	pos := t.Cursor()
	prev, err := t.Cell(pos.Row, pos.Col)
	if err == nil {
		var post *grid.Advance
		post, err = t.SetCurrentValue(value)
		if err == nil {
			if pre != nil {
				w.push(AdvanceRow{*pre})
			}
			w.push(SetCell{Row: pos.Row, Col: pos.Col, Previous: prev})
			if post != nil {
				w.push(AdvanceRow{*post})
			}
			w.logger.Info("value written",
				zap.String("value", value),
				zap.Int("row", pos.Row+1),
				zap.Int("col", pos.Col+1),
				zap.Bool("advanced", post != nil))
			return post != nil, nil
		}
	}

	if pre != nil {
		if rerr := t.RevertAdvance(*pre); rerr != nil {
			return false, fmt.Errorf("set value: %w (rollback failed: %v)", err, rerr)
		}
	}
	return false, fmt.Errorf("set value: %w", err)
}

// SkipCell leaves the current cell as a placeholder and moves on.
func (w *Workspace) SkipCell() (advanced bool, err error) {
	return w.SetValue(grid.Placeholder)
}

// NextRow forces the cursor onto the next row.
func (w *Workspace) NextRow() error {
	t, err := w.active("move to the next row")
	if err != nil {
		return err
	}
	adv := t.AdvanceRow()
	w.push(AdvanceRow{adv})
	w.logger.Info("row advanced", zap.Int("row", t.Cursor().Row+1))
	return nil
}

// DeleteRow removes a row (0-based).
func (w *Workspace) DeleteRow(row int) error {
	t, err := w.active("delete a row")
	if err != nil {
		return err
	}
	d, err := t.DeleteRow(row)
	if err != nil {
		return err
	}
	w.push(DeleteRow{d})
	w.logger.Info("row deleted", zap.Int("row", row+1), zap.Strings("cells", d.Snapshot))
	return nil
}

// InsertRow inserts a placeholder row before row (0-based).
func (w *Workspace) InsertRow(row int) error {
	t, err := w.active("insert a row")
	if err != nil {
		return err
	}
	if err := t.InsertRow(row); err != nil {
		return err
	}
	w.push(InsertRow{Row: row})
	w.logger.Info("row inserted", zap.Int("row", row+1))
	return nil
}

// =============================================================================
// NAVIGATION
// =============================================================================
//
// Repositioning moves the cursor only; it is not recorded.

// EditAt moves the cursor to (row, col) so the next value overwrites it.
func (w *Workspace) EditAt(row, col int) error {
	t, err := w.active("edit a cell")
	if err != nil {
		return err
	}
	return t.SetPosition(row, col)
}

// ReturnToPrevious moves the cursor back to where it was before the last
// explicit reposition.
func (w *Workspace) ReturnToPrevious() error {
	t, err := w.active("return to the previous position")
	if err != nil {
		return err
	}
	return t.ReturnToPrevious()
}

// Release hands back the active table and forgets it together with its
// history, which refers to it.
func (w *Workspace) Release() (*grid.Table, error) {
	t, err := w.active("save")
	if err != nil {
		return nil, err
	}
	w.table = nil
	w.stack.Clear()
	return t, nil
}

// =============================================================================
// UNDO
// =============================================================================

// Undo reverts the most recent record and returns it.
func (w *Workspace) Undo() (Record, error) {
	r, ok := w.stack.Pop()
	if !ok {
		return nil, &grid.EmptyHistoryError{}
	}

	if err := w.revert(r); err != nil {
		w.stack.Push(r)
		return nil, fmt.Errorf("undo %s: %w", r.Kind(), err)
	}

	if w.table != nil && w.table.PruneTrailing() {
		w.logger.Debug("pruned stray trailing row")
	}
	w.logger.Info("undone", zap.String("record", r.Kind()), zap.Int("depth", w.stack.Len()))
	return r, nil
}

func (w *Workspace) revert(r Record) error {
	if _, ok := r.(Create); !ok && w.table == nil {
		return &grid.NoActiveTableError{Action: "undo"}
	}

	switch r := r.(type) {
	case Create:
		w.table = r.Previous
		return nil
	case SetCell:
		return w.table.RestoreCell(r.Row, r.Col, r.Previous)
	case AdvanceRow:
		return w.table.RevertAdvance(r.Advance)
	case DeleteRow:
		return w.table.RestoreRow(r.Deletion)
	case InsertRow:
		return w.table.RemoveInserted(r.Row)
	default:
		return fmt.Errorf("unknown record %T", r)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (w *Workspace) active(action string) (*grid.Table, error) {
	if w.table == nil {
		return nil, &grid.NoActiveTableError{Action: action}
	}
	return w.table, nil
}

func (w *Workspace) push(r Record) {
	w.stack.Push(r)
	w.logger.Debug("recorded", zap.String("record", r.Kind()), zap.Int("depth", w.stack.Len()))
}
