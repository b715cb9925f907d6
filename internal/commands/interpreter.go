// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"

	"github.com/jeranaias/voxtable/internal/grid"
	"github.com/jeranaias/voxtable/internal/numwords"
)

// =============================================================================
// RULES
// =============================================================================

// rule is one keyword predicate and the parser it dispatches to.
type rule struct {
	kind  Kind
	match func(u *utterance) bool
	parse func(u *utterance) (Command, error)
}

// compiled holds the keyword alternatives split into words.
type compiled struct {
	pause, resume, exit, help []phrase
	template                  []phrase
	createTable               []phrase
	tableMark, colsMark       []phrase
	nextRow, skip, undo       []phrase
	insert, remove            []phrase
	edit, back                []phrase
	save, saveAs              []phrase
	rowMark, colMark          []phrase
}

// =============================================================================
// INTERPRETER
// =============================================================================

// Interpreter maps an utterance to exactly one Command. Rules are tried in a
// fixed order and the first match wins; anything unmatched is a value for the
// current cell. The interpreter never mutates a table.
type Interpreter struct {
	keywords *Keywords
	numbers  *numwords.Normalizer
	catalog  *Catalog
	kw       compiled
	rules    []rule
}

// NewInterpreter builds an interpreter for one language.
func NewInterpreter(keywords *Keywords, numbers *numwords.Normalizer, catalog *Catalog) *Interpreter {
	in := &Interpreter{
		keywords: keywords,
		numbers:  numbers,
		catalog:  catalog,
		kw: compiled{
			pause:       phrases(keywords.Pause),
			resume:      phrases(keywords.Resume),
			exit:        phrases(keywords.Exit),
			help:        phrases(keywords.Help),
			template:    phrases(keywords.Template),
			createTable: phrases(keywords.CreateTable),
			tableMark:   phrases(keywords.TableMarker),
			colsMark:    phrases(keywords.ColumnsMarker),
			nextRow:     phrases(keywords.NextRow),
			skip:        phrases(keywords.SkipCell),
			undo:        phrases(keywords.Undo),
			insert:      phrases(keywords.InsertRow),
			remove:      phrases(keywords.DeleteRow),
			edit:        phrases(keywords.Edit),
			back:        phrases(keywords.Return),
			save:        phrases(keywords.Save),
			saveAs:      phrases(keywords.SaveAs),
			rowMark:     phrases(keywords.RowMarker),
			colMark:     phrases(keywords.ColumnMarker),
		},
	}
	in.rules = in.buildRules()
	return in
}

// Keywords returns the grammar the interpreter was built with.
func (in *Interpreter) Keywords() *Keywords { return in.keywords }

// Catalog returns the template catalogue.
func (in *Interpreter) Catalog() *Catalog { return in.catalog }

// Interpret parses one utterance. headers is the active table's header row,
// or nil when no table exists.
func (in *Interpreter) Interpret(text string, headers []string) (Command, error) {
	u := &utterance{
		text:    strings.TrimSpace(text),
		words:   in.numbers.Tokenize(text),
		headers: headers,
	}
	for _, r := range in.rules {
		if r.match(u) {
			return r.parse(u)
		}
	}
	return in.setValue(u)
}

// IsResume reports whether an utterance heard while paused ends the pause.
func (in *Interpreter) IsResume(text string) bool {
	u := &utterance{words: in.numbers.Tokenize(text)}
	return u.has(in.kw.resume)
}

// buildRules returns the dispatch table. The order is part of the grammar:
// "template" must win over "create table", "save" over "edit", and so on.
func (in *Interpreter) buildRules() []rule {
	kw := &in.kw
	on := func(alts []phrase) func(*utterance) bool {
		return func(u *utterance) bool { return u.has(alts) }
	}
	fixed := func(c Command) func(*utterance) (Command, error) {
		return func(*utterance) (Command, error) { return c, nil }
	}

	return []rule{
		{KindPause, on(kw.pause), fixed(Pause{})},
		{KindExit, on(kw.exit), fixed(Exit{})},
		{KindHelp, on(kw.help), fixed(Help{})},
		{KindCreateFromTemplate, on(kw.template), in.createFromTemplate},
		{KindCreateTable, on(kw.createTable), in.createTable},
		{KindNextRow, on(kw.nextRow), fixed(NextRow{})},
		{KindSkipCell, on(kw.skip), fixed(SkipCell{})},
		{KindUndo, on(kw.undo), fixed(Undo{})},
		{KindInsertRow, on(kw.insert), in.insertRow},
		{KindSave, on(kw.save), in.save},
		{KindEditAt, on(kw.edit), in.editAt},
		{KindReturnToPrevious, on(kw.back), fixed(ReturnToPrevious{})},
		{KindDeleteRow, on(kw.remove), in.deleteRow},
	}
}

// =============================================================================
// ARGUMENT PARSERS
// =============================================================================

func (in *Interpreter) createFromTemplate(u *utterance) (Command, error) {
	rest, _, _ := u.after(in.kw.template, 0)
	id, ok := in.numbers.Integer(join(rest))
	if !ok {
		return nil, in.usage(KindCreateFromTemplate, "template", "template number is missing")
	}
	t, err := in.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	return CreateFromTemplate{ID: t.ID, Name: t.Name, Headers: t.Headers}, nil
}

func (in *Interpreter) createTable(u *utterance) (Command, error) {
	ti, tn := u.find(in.kw.tableMark, 0)
	ci, cn := u.find(in.kw.colsMark, 0)

	switch {
	case ti < 0 || ci < 0:
		return nil, in.usage(KindCreateTable, "create table", "say the table name, then the columns")
	case ci < ti:
		return nil, in.usage(KindCreateTable, "create table", "the table name must come before the columns")
	}

	name := join(u.words[ti+tn : ci])
	headers := u.words[ci+cn:]
	if name == "" {
		return nil, in.usage(KindCreateTable, "create table", "table name is missing")
	}
	if len(headers) == 0 {
		return nil, in.usage(KindCreateTable, "create table", "at least one column is required")
	}
	return CreateTable{Name: name, Headers: append([]string(nil), headers...)}, nil
}

func (in *Interpreter) insertRow(u *utterance) (Command, error) {
	row, err := in.rowNumber(u, KindInsertRow, "insert row", 0, -1)
	if err != nil {
		return nil, err
	}
	return InsertRow{Row: row}, nil
}

func (in *Interpreter) deleteRow(u *utterance) (Command, error) {
	row, err := in.rowNumber(u, KindDeleteRow, "delete row", 0, -1)
	if err != nil {
		return nil, err
	}
	return DeleteRow{Row: row}, nil
}

func (in *Interpreter) save(u *utterance) (Command, error) {
	_, end, _ := u.after(in.kw.save, 0)
	rest, _, ok := u.after(in.kw.saveAs, end)
	if !ok {
		return Save{}, nil
	}
	if len(rest) == 0 {
		return nil, in.usage(KindSave, "save", "file name is missing")
	}
	return Save{FileName: join(rest)}, nil
}

func (in *Interpreter) editAt(u *utterance) (Command, error) {
	ci, cn := u.find(in.kw.colMark, 0)
	if ci < 0 {
		return nil, in.usage(KindEditAt, "edit", "say the row number and the column name")
	}

	// The row and column parts may come in either order. A row marker after
	// the column marker is looked for past the first column word, so a
	// column called "row" still works.
	var (
		row    int
		err    error
		column []string
	)
	if ri, _ := u.find(in.kw.rowMark, 0); ri >= 0 && ri < ci {
		row, err = in.rowNumber(u, KindEditAt, "edit", 0, ci)
		column = u.words[ci+cn:]
	} else {
		ri, _ = u.find(in.kw.rowMark, ci+cn+1)
		if ri < 0 {
			return nil, in.usage(KindEditAt, "edit", "row number is missing")
		}
		row, err = in.rowNumber(u, KindEditAt, "edit", ri, -1)
		column = u.words[ci+cn : ri]
	}
	if err != nil {
		return nil, err
	}

	if len(column) == 0 {
		return nil, in.usage(KindEditAt, "edit", "column name is missing")
	}
	if u.headers == nil {
		return nil, &grid.NoActiveTableError{Action: "edit a cell"}
	}

	// A multi-word header is tried before its first word.
	for _, name := range []string{join(column), column[0]} {
		for i, h := range u.headers {
			if h == name {
				return EditAt{Row: row, Col: i, Column: h}, nil
			}
		}
	}
	return nil, &grid.LookupError{Resource: "column", Key: join(column)}
}

func (in *Interpreter) setValue(u *utterance) (Command, error) {
	if u.text == "" {
		return nil, &grid.UsageError{Command: "set value", Reason: "nothing was heard"}
	}
	return SetValue{Text: in.numbers.Normalize(u.text)}, nil
}

// rowNumber reads the 1-based row number after the first row marker at or
// after from, stopping at word index stop (or the end when stop < 0), and
// returns it 0-based.
func (in *Interpreter) rowNumber(u *utterance, kind Kind, command string, from, stop int) (int, error) {
	ri, rn := u.find(in.kw.rowMark, from)
	if ri < 0 || (stop >= 0 && ri > stop) {
		return 0, in.usage(kind, command, "row number is missing")
	}
	end := len(u.words)
	if stop >= 0 {
		end = stop
	}
	n, ok := in.numbers.Integer(join(u.words[ri+rn : end]))
	if !ok {
		return 0, in.usage(kind, command, "row number is missing")
	}
	if n < 1 {
		return 0, in.usage(kind, command, "rows are numbered from one")
	}
	return n - 1, nil
}

func (in *Interpreter) usage(kind Kind, command, reason string) error {
	return &grid.UsageError{Command: command, Reason: reason, Example: in.keywords.Example(kind)}
}
