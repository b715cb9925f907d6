// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"
)

// Labels are the user-facing strings of one language.
type Labels struct {
	Row        string
	Position   string
	RowFull    string
	NoTable    string
	Paused     string
	Resumed    string
	Saved      string
	Draft      string
	Undone     string
	Created    string
	Goodbye    string
	Listening  string
	Banner     string
	HelpTitle  string
	Templates  string
	TemplateID string
	Name       string
	Columns    string
}

// LabelsFor returns the labels for a language code.
func LabelsFor(lang string) (Labels, error) {
	switch strings.ToLower(lang) {
	case "", "en", "english":
		return EnglishLabels(), nil
	case "ru", "russian":
		return RussianLabels(), nil
	default:
		return Labels{}, fmt.Errorf("no labels for language %q", lang)
	}
}

// EnglishLabels returns the English labels.
func EnglishLabels() Labels {
	return Labels{
		Row:        "Row",
		Position:   "Position",
		RowFull:    "row complete",
		NoTable:    "No active table. Create one first, e.g. %q.",
		Paused:     "Paused. Say %q to continue.",
		Resumed:    "Resumed.",
		Saved:      "Saved %s",
		Draft:      "Unsaved table %q kept as a draft in %s",
		Undone:     "Undone: %s",
		Created:    "Created table %s",
		Goodbye:    "Goodbye.",
		Listening:  "Listening...",
		Banner:     "voxtable: dictate a table. Say %q for the list of commands.",
		HelpTitle:  "Commands",
		Templates:  "Templates",
		TemplateID: "ID",
		Name:       "Name",
		Columns:    "Columns",
	}
}

// RussianLabels returns the Russian labels.
func RussianLabels() Labels {
	return Labels{
		Row:        "Строка",
		Position:   "Текущая позиция",
		RowFull:    "строка заполнена",
		NoTable:    "Нет активной таблицы. Сначала создайте её, например %q.",
		Paused:     "Пауза. Скажите %q, чтобы продолжить.",
		Resumed:    "Продолжаем.",
		Saved:      "Сохранено: %s",
		Draft:      "Несохранённая таблица %q оставлена черновиком в %s",
		Undone:     "Отменено: %s",
		Created:    "Создана таблица %s",
		Goodbye:    "До свидания.",
		Listening:  "Слушаю...",
		Banner:     "voxtable: диктуйте таблицу. Скажите %q, чтобы увидеть список команд.",
		HelpTitle:  "Команды",
		Templates:  "Шаблоны",
		TemplateID: "№",
		Name:       "Название",
		Columns:    "Столбцы",
	}
}
