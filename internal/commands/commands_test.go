// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/voxtable/internal/grid"
	"github.com/jeranaias/voxtable/internal/numwords"
)

func newEnglish() *Interpreter {
	return NewInterpreter(EnglishKeywords(), numwords.New(numwords.English()), BuiltinCatalog("en"))
}

func newRussian() *Interpreter {
	return NewInterpreter(RussianKeywords(), numwords.New(numwords.Russian()), BuiltinCatalog("ru"))
}

var scoreHeaders = []string{"name", "score"}

// =============================================================================
// DISPATCH TESTS
// =============================================================================

func TestInterpret_Dispatch(t *testing.T) {
	in := newEnglish()

	tests := []struct {
		input string
		want  Command
	}{
		{"pause", Pause{}},
		{"exit", Exit{}},
		{"quit", Exit{}},
		{"help", Help{}},
		{"next row", NextRow{}},
		{"skip", SkipCell{}},
		{"undo", Undo{}},
		{"cancel that", Undo{}},
		{"save", Save{}},
		{"save as weekly report", Save{FileName: "weekly report"}},
		{"go back", ReturnToPrevious{}},
		{"return", ReturnToPrevious{}},
		{"insert row two", InsertRow{Row: 1}},
		{"delete row three", DeleteRow{Row: 2}},
		{"delete row 3", DeleteRow{Row: 2}},
		{"edit row one column score", EditAt{Row: 0, Col: 1, Column: "score"}},
		{"edit column score row two", EditAt{Row: 1, Col: 1, Column: "score"}},
		{"create table scores columns name score", CreateTable{Name: "scores", Headers: []string{"name", "score"}}},
		{"alice", SetValue{Text: "alice"}},
		{"twenty eight", SetValue{Text: "28"}},
		{"Twenty Eight point three", SetValue{Text: "28,3"}},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := in.Interpret(tc.input, scoreHeaders)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInterpret_FirstMatchWins(t *testing.T) {
	in := newEnglish()

	tests := []struct {
		input string
		want  Kind
	}{
		// pause is checked before everything else
		{"pause and exit", KindPause},
		{"exit help", KindExit},
		{"help me create table", KindHelp},
		// template beats create table
		{"create table from template two", KindCreateFromTemplate},
		{"next row skip", KindNextRow},
		{"skip undo", KindSkipCell},
		{"undo save", KindUndo},
		{"insert row one save", KindInsertRow},
		{"save edit", KindSave},
		{"edit row one column name go back", KindEditAt},
		{"go back delete row one", KindReturnToPrevious},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := in.Interpret(tc.input, scoreHeaders)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Kind())
		})
	}
}

func TestInterpret_WordBoundaries(t *testing.T) {
	in := newEnglish()

	// Keywords inside longer words are cell values.
	for _, input := range []string{"skipper", "paused", "helpful", "unsaved"} {
		got, err := in.Interpret(input, scoreHeaders)
		require.NoError(t, err)
		assert.Equal(t, SetValue{Text: input}, got, input)
	}
}

// =============================================================================
// ARGUMENT TESTS
// =============================================================================

func TestInterpret_CreateTableErrors(t *testing.T) {
	in := newEnglish()

	tests := []string{
		"create table scores",
		"create table columns name score",
		"create table scores columns",
		"new table name score",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := in.Interpret(input, nil)
			require.Error(t, err)
			assert.True(t, grid.IsUsage(err), "want UsageError, got %v", err)

			var usage *grid.UsageError
			require.ErrorAs(t, err, &usage)
			assert.Equal(t, "create table scores columns name score", usage.Example)
		})
	}
}

func TestInterpret_CreateTableMultiWordName(t *testing.T) {
	got, err := newEnglish().Interpret("create table team scores columns name points bonus", nil)
	require.NoError(t, err)
	assert.Equal(t, CreateTable{Name: "team scores", Headers: []string{"name", "points", "bonus"}}, got)
}

func TestInterpret_Templates(t *testing.T) {
	in := newEnglish()

	got, err := in.Interpret("template two", nil)
	require.NoError(t, err)
	assert.Equal(t, CreateFromTemplate{ID: 2, Name: "inventory", Headers: []string{"item", "quantity", "price"}}, got)

	_, err = in.Interpret("template nine", nil)
	assert.True(t, grid.IsLookup(err), "unknown id: %v", err)

	_, err = in.Interpret("template", nil)
	assert.True(t, grid.IsUsage(err), "missing id: %v", err)
}

func TestInterpret_EditErrors(t *testing.T) {
	in := newEnglish()

	_, err := in.Interpret("edit row one column height", scoreHeaders)
	assert.True(t, grid.IsLookup(err), "column not found: %v", err)

	_, err = in.Interpret("edit row one column score", nil)
	assert.True(t, grid.IsNoActiveTable(err), "no table: %v", err)

	_, err = in.Interpret("edit column score", scoreHeaders)
	assert.True(t, grid.IsUsage(err), "missing row: %v", err)

	_, err = in.Interpret("edit row one", scoreHeaders)
	assert.True(t, grid.IsUsage(err), "missing column: %v", err)

	_, err = in.Interpret("edit row zero column score", scoreHeaders)
	assert.True(t, grid.IsUsage(err), "row zero: %v", err)
}

func TestInterpret_EditColumnFirst(t *testing.T) {
	in := newEnglish()

	got, err := in.Interpret("edit column first name row three", []string{"first name", "age"})
	require.NoError(t, err)
	assert.Equal(t, EditAt{Row: 2, Col: 0, Column: "first name"}, got)

	// A column named like the row marker is not mistaken for it.
	got, err = in.Interpret("edit column row row two", []string{"row", "seat"})
	require.NoError(t, err)
	assert.Equal(t, EditAt{Row: 1, Col: 0, Column: "row"}, got)

	_, err = in.Interpret("edit column score row", scoreHeaders)
	assert.True(t, grid.IsUsage(err), "missing number: %v", err)
}

func TestInterpret_RowCommandsNeedNumber(t *testing.T) {
	in := newEnglish()

	for _, input := range []string{"delete row", "insert row", "delete row please"} {
		_, err := in.Interpret(input, scoreHeaders)
		assert.True(t, grid.IsUsage(err), "%s: %v", input, err)
	}
}

func TestInterpret_SaveAsWithoutName(t *testing.T) {
	_, err := newEnglish().Interpret("save as", scoreHeaders)
	assert.True(t, grid.IsUsage(err))
}

func TestInterpret_EmptyUtterance(t *testing.T) {
	_, err := newEnglish().Interpret("   ", scoreHeaders)
	assert.True(t, grid.IsUsage(err))
}

func TestIsResume(t *testing.T) {
	in := newEnglish()
	assert.True(t, in.IsResume("ok resume"))
	assert.True(t, in.IsResume("Continue"))
	assert.False(t, in.IsResume("twenty eight"))
	assert.False(t, in.IsResume("resumed"))
}

// =============================================================================
// RUSSIAN GRAMMAR
// =============================================================================

func TestInterpret_Russian(t *testing.T) {
	in := newRussian()
	headers := []string{"фамилия", "имя", "команда", "балл"}

	tests := []struct {
		input string
		want  Command
	}{
		{"пауза", Pause{}},
		{"выход", Exit{}},
		{"создай таблицу турнир столбцы фамилия имя команда балл",
			CreateTable{Name: "турнир", Headers: []string{"фамилия", "имя", "команда", "балл"}}},
		{"следующая строка", NextRow{}},
		{"пропусти", SkipCell{}},
		{"отмена", Undo{}},
		{"сохрани", Save{}},
		{"сохрани как итоги", Save{FileName: "итоги"}},
		{"редактировать строка два столбец балл", EditAt{Row: 1, Col: 3, Column: "балл"}},
		{"удалить строка один", DeleteRow{Row: 0}},
		{"вставить строку три", InsertRow{Row: 2}},
		{"шаблон один", CreateFromTemplate{ID: 1, Name: "турнир", Headers: headers}},
		{"двадцать восемь целых три десятых", SetValue{Text: "28,3"}},
		{"полтора", SetValue{Text: "1,5"}},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := in.Interpret(tc.input, headers)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.True(t, in.IsResume("продолжай"))
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestCatalog_LoadAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`
templates:
  - id: 2
    name: laps
    headers: [driver, lap, time]
  - id: 1
    name: grades
    headers: [student, grade]
`), 0600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "grades", c.All()[0].Name, "templates are ordered by id")

	tpl, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"driver", "lap", "time"}, tpl.Headers)

	// An invalid file leaves the catalogue untouched.
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - id: 5\n    name: x\n    headers: [a]\n"), 0600))
	assert.Error(t, c.Reload(path))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - id: 1\n    name: single\n    headers: [a]\n"), 0600))
	require.NoError(t, c.Reload(path))
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_HeadersAreLowerCased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates:
  - id: 1
    name: Roster
    headers: [Name, " Score "]
`), 0600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	tpl, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score"}, tpl.Headers)

	got, err := newEnglish().Interpret("edit row one column score", tpl.Headers)
	require.NoError(t, err)
	assert.Equal(t, EditAt{Row: 0, Col: 1, Column: "score"}, got)
}

func TestCatalog_Validation(t *testing.T) {
	tests := []struct {
		name      string
		templates []Template
	}{
		{"empty", nil},
		{"gap", []Template{{ID: 1, Name: "a", Headers: []string{"x"}}, {ID: 3, Name: "b", Headers: []string{"y"}}}},
		{"duplicate", []Template{{ID: 1, Name: "a", Headers: []string{"x"}}, {ID: 1, Name: "b", Headers: []string{"y"}}}},
		{"no name", []Template{{ID: 1, Headers: []string{"x"}}}},
		{"no headers", []Template{{ID: 1, Name: "a"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(tc.templates)
			assert.Error(t, err)
		})
	}
}

func TestBuiltinCatalogs(t *testing.T) {
	for _, lang := range []string{"en", "ru"} {
		c := BuiltinCatalog(lang)
		assert.NoError(t, validateTemplates(c.All()), lang)
	}
}

func TestKeywordsFor(t *testing.T) {
	for _, lang := range numwords.Languages() {
		kw, err := KeywordsFor(lang)
		require.NoError(t, err)
		assert.Len(t, kw.Usage, 14, "every command kind has a help entry")
	}
	_, err := KeywordsFor("xx")
	assert.Error(t, err)
}
