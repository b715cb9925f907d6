// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/voxtable/internal/grid"
)

// =============================================================================
// TEMPLATE
// =============================================================================

// Template is a predefined table layout addressed by a 1-based id.
type Template struct {
	ID      int      `yaml:"id"`
	Name    string   `yaml:"name"`
	Headers []string `yaml:"headers"`
}

// templateFile is the on-disk layout of a catalogue file.
type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog holds the templates available to create-from-template. It is safe
// for concurrent use so a file watcher can swap its contents while the
// session loop reads it.
type Catalog struct {
	mu        sync.RWMutex
	templates []Template
}

// NewCatalog creates a catalogue from templates, validating them.
func NewCatalog(templates []Template) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(templates); err != nil {
		return nil, err
	}
	return c, nil
}

// BuiltinCatalog returns the built-in templates for a language.
func BuiltinCatalog(lang string) *Catalog {
	var templates []Template
	switch strings.ToLower(lang) {
	case "ru", "russian":
		templates = []Template{
			{ID: 1, Name: "турнир", Headers: []string{"фамилия", "имя", "команда", "балл"}},
			{ID: 2, Name: "склад", Headers: []string{"товар", "количество", "цена"}},
			{ID: 3, Name: "контакты", Headers: []string{"имя", "телефон", "город"}},
			{ID: 4, Name: "расходы", Headers: []string{"дата", "категория", "сумма"}},
		}
	default:
		templates = []Template{
			{ID: 1, Name: "tournament", Headers: []string{"surname", "name", "team", "score"}},
			{ID: 2, Name: "inventory", Headers: []string{"item", "quantity", "price"}},
			{ID: 3, Name: "contacts", Headers: []string{"name", "phone", "city"}},
			{ID: 4, Name: "expenses", Headers: []string{"date", "category", "amount"}},
		}
	}
	return &Catalog{templates: templates}
}

// LoadCatalog reads a YAML catalogue file:
//
//	templates:
//	  - id: 1
//	    name: tournament
//	    headers: [surname, name, team, score]
func LoadCatalog(path string) (*Catalog, error) {
	templates, err := readTemplates(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(templates)
}

// Reload replaces the catalogue with the contents of a YAML file. The
// current templates are kept when the file is invalid.
func (c *Catalog) Reload(path string) error {
	templates, err := readTemplates(path)
	if err != nil {
		return err
	}
	return c.Replace(templates)
}

// Replace swaps in a new template set after validating it. Headers are
// lower-cased to match the lower-cased utterances that address them.
func (c *Catalog) Replace(templates []Template) error {
	if err := validateTemplates(templates); err != nil {
		return err
	}
	sorted := make([]Template, len(templates))
	for i, t := range templates {
		headers := make([]string, len(t.Headers))
		for j, h := range t.Headers {
			headers[j] = strings.ToLower(strings.TrimSpace(h))
		}
		t.Headers = headers
		sorted[i] = t
	}
	slices.SortFunc(sorted, func(a, b Template) int { return a.ID - b.ID })

	c.mu.Lock()
	c.templates = sorted
	c.mu.Unlock()
	return nil
}

// Get returns the template with the given id.
func (c *Catalog) Get(id int) (Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.templates {
		if t.ID == id {
			t.Headers = slices.Clone(t.Headers)
			return t, nil
		}
	}
	return Template{}, &grid.LookupError{Resource: "template", Key: strconv.Itoa(id)}
}

// All returns a copy of every template, ordered by id.
func (c *Catalog) All() []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Template, len(c.templates))
	for i, t := range c.templates {
		t.Headers = slices.Clone(t.Headers)
		out[i] = t
	}
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// =============================================================================
// HELPERS
// =============================================================================

func readTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}
	return file.Templates, nil
}

// validateTemplates requires ids 1..N without gaps, a name and at least one
// header per template.
func validateTemplates(templates []Template) error {
	if len(templates) == 0 {
		return fmt.Errorf("template catalogue is empty")
	}
	seen := make(map[int]bool, len(templates))
	for _, t := range templates {
		if t.ID < 1 || t.ID > len(templates) {
			return fmt.Errorf("template %q: id %d outside 1..%d", t.Name, t.ID, len(templates))
		}
		if seen[t.ID] {
			return fmt.Errorf("template id %d is used twice", t.ID)
		}
		seen[t.ID] = true
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("template %d has no name", t.ID)
		}
		if len(t.Headers) == 0 {
			return fmt.Errorf("template %q has no headers", t.Name)
		}
	}
	return nil
}
