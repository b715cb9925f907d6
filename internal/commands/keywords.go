// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"
)

// =============================================================================
// KEYWORD SETS
// =============================================================================

// Keywords holds the trigger phrases and argument markers of one spoken
// language. Every entry is a list of alternatives; a phrase matches when its
// words appear consecutively in the utterance.
type Keywords struct {
	Language string

	Pause  []string
	Resume []string
	Exit   []string
	Help   []string

	// Template triggers create-from-template; the id follows it.
	Template []string

	// CreateTable triggers create-table. TableMarker and ColumnsMarker
	// bracket the table name; headers follow ColumnsMarker.
	CreateTable   []string
	TableMarker   []string
	ColumnsMarker []string

	NextRow   []string
	SkipCell  []string
	Undo      []string
	InsertRow []string
	DeleteRow []string
	Edit      []string
	Return    []string

	// Save triggers save; an optional SaveAs marker introduces a file name.
	Save   []string
	SaveAs []string

	// RowMarker precedes a row number, ColumnMarker a column name.
	RowMarker    []string
	ColumnMarker []string

	// Usage documents each command for the help screen, in dispatch order.
	Usage []Usage
}

// Usage is one help entry.
type Usage struct {
	Kind        Kind
	Example     string
	Description string
}

// KeywordsFor returns the built-in keyword set for a language code.
func KeywordsFor(lang string) (*Keywords, error) {
	switch strings.ToLower(lang) {
	case "", "en", "english":
		return EnglishKeywords(), nil
	case "ru", "russian":
		return RussianKeywords(), nil
	default:
		return nil, fmt.Errorf("no command keywords for language %q", lang)
	}
}

// Example returns the example utterance for a command kind, or "".
func (k *Keywords) Example(kind Kind) string {
	for _, u := range k.Usage {
		if u.Kind == kind {
			return u.Example
		}
	}
	return ""
}

// EnglishKeywords returns the English command grammar.
func EnglishKeywords() *Keywords {
	return &Keywords{
		Language:      "en",
		Pause:         []string{"pause"},
		Resume:        []string{"resume", "continue"},
		Exit:          []string{"exit", "quit"},
		Help:          []string{"help"},
		Template:      []string{"template"},
		CreateTable:   []string{"create table", "new table"},
		TableMarker:   []string{"table"},
		ColumnsMarker: []string{"columns"},
		NextRow:       []string{"next row"},
		SkipCell:      []string{"skip"},
		Undo:          []string{"undo", "cancel"},
		InsertRow:     []string{"insert row", "add row"},
		DeleteRow:     []string{"delete row", "remove row"},
		Edit:          []string{"edit"},
		Return:        []string{"go back", "return"},
		Save:          []string{"save"},
		SaveAs:        []string{"as"},
		RowMarker:     []string{"row"},
		ColumnMarker:  []string{"column"},
		Usage: []Usage{
			{KindPause, "pause", "stop listening until you say resume"},
			{KindExit, "exit", "end the session"},
			{KindHelp, "help", "show this reference"},
			{KindCreateFromTemplate, "template two", "create a table from a template"},
			{KindCreateTable, "create table scores columns name score", "create a table"},
			{KindNextRow, "next row", "move to the start of the next row"},
			{KindSkipCell, "skip", "leave the current cell empty"},
			{KindUndo, "undo", "revert the last edit"},
			{KindInsertRow, "insert row two", "insert a blank row before row two"},
			{KindSave, "save as results", "export the table and close it"},
			{KindEditAt, "edit row one column score", "move to a cell to overwrite it"},
			{KindReturnToPrevious, "go back", "return to where you were before editing"},
			{KindDeleteRow, "delete row three", "delete a row"},
			{KindSetValue, "twenty eight point five", "anything else fills the current cell"},
		},
	}
}

// RussianKeywords returns the Russian command grammar, listing the inflected
// forms a recognizer produces.
func RussianKeywords() *Keywords {
	return &Keywords{
		Language:      "ru",
		Pause:         []string{"пауза"},
		Resume:        []string{"продолжить", "продолжай"},
		Exit:          []string{"выход"},
		Help:          []string{"помощь", "справка"},
		Template:      []string{"шаблон", "шаблону", "шаблона"},
		CreateTable:   []string{"создай таблицу", "создать таблицу"},
		TableMarker:   []string{"таблицу"},
		ColumnsMarker: []string{"столбцы"},
		NextRow:       []string{"следующая строка"},
		SkipCell:      []string{"пропусти", "пропуск"},
		Undo:          []string{"отмена", "отменить"},
		InsertRow:     []string{"вставить строка", "вставить строку", "вставь строку"},
		DeleteRow:     []string{"удалить строка", "удалить строку", "удали строку"},
		Edit:          []string{"редактировать", "редактируй"},
		Return:        []string{"вернуться", "вернись"},
		Save:          []string{"сохрани", "сохранить"},
		SaveAs:        []string{"как"},
		RowMarker:     []string{"строка", "строку"},
		ColumnMarker:  []string{"столбец"},
		Usage: []Usage{
			{KindPause, "пауза", "не слушать команды до слова «продолжить»"},
			{KindExit, "выход", "завершить работу"},
			{KindHelp, "помощь", "показать эту справку"},
			{KindCreateFromTemplate, "шаблон два", "создать таблицу по шаблону"},
			{KindCreateTable, "создай таблицу турнир столбцы фамилия имя команда балл", "создать таблицу"},
			{KindNextRow, "следующая строка", "перейти к следующей строке"},
			{KindSkipCell, "пропусти", "оставить ячейку пустой"},
			{KindUndo, "отмена", "отменить последнее действие"},
			{KindInsertRow, "вставить строку два", "вставить пустую строку перед второй"},
			{KindSave, "сохрани как итоги", "сохранить таблицу и закрыть её"},
			{KindEditAt, "редактировать строка один столбец имя", "перейти к ячейке для исправления"},
			{KindReturnToPrevious, "вернуться", "вернуться на прежнюю позицию"},
			{KindDeleteRow, "удалить строка три", "удалить строку"},
			{KindSetValue, "двадцать восемь целых пять десятых", "всё остальное записывается в текущую ячейку"},
		},
	}
}
