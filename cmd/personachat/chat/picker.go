package chat

import (
	"github.com/charmbracelet/bubbles/list"

	"personachat/cmd/personachat/ui"
	"personachat/internal/persona"
)

// personaItem is a list item for the persona picker.
type personaItem struct {
	record persona.Record
}

func (i personaItem) Title() string { return i.record.DisplayName() }

func (i personaItem) Description() string {
	desc := i.record.Category
	if i.record.Trait != "" {
		desc += " · " + i.record.Trait
	}
	if i.record.Backstory != "" {
		desc += " · " + i.record.Backstory
	}
	return desc
}

func (i personaItem) FilterValue() string {
	return i.record.Name + " " + i.record.Category + " " + i.record.ID
}

// pickerItems lists personas grouped by category, categories in catalog order.
func pickerItems(c *persona.Catalog) []list.Item {
	items := make([]list.Item, 0, c.Len())
	for _, category := range c.Categories() {
		for _, p := range c.InCategory(category) {
			items = append(items, personaItem{record: p})
		}
	}
	return items
}

func newPicker(c *persona.Catalog, styles ui.Styles) list.Model {
	l := list.New(pickerItems(c), list.NewDefaultDelegate(), 80, 20)
	l.Title = "Choose a persona"
	l.Styles.Title = styles.Header
	l.SetShowStatusBar(true)
	return l
}

// selectPersona moves the picker cursor to the persona with id.
func (m *Model) selectPersona(id string) {
	for i, item := range m.picker.Items() {
		if pi, ok := item.(personaItem); ok && pi.record.ID == id {
			m.picker.Select(i)
			return
		}
	}
}
