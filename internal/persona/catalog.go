// Package persona holds the immutable persona catalog: who the model speaks as,
// how it greets the user, and the metadata shown in pickers.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a lookup names a persona absent from the catalog.
var ErrNotFound = errors.New("persona not found")

// Record is one catalog entry. Records are values; the catalog never hands out
// pointers into its table.
type Record struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	ShortName    string `yaml:"short_name" json:"short_name"`
	Icon         string `yaml:"icon" json:"icon"`
	Category     string `yaml:"category" json:"category"`
	Trait        string `yaml:"trait" json:"trait"`
	Backstory    string `yaml:"backstory" json:"backstory"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
	Greeting     string `yaml:"greeting" json:"greeting,omitempty"`
}

// DisplayName is the name with its icon, as shown in pickers.
func (r Record) DisplayName() string {
	if r.Icon == "" {
		return r.Name
	}
	return r.Name + " " + r.Icon
}

// Speaker is the label used for the persona's turns in transcripts.
func (r Record) Speaker() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.Name
}

// GreetingText returns the first assistant utterance. Records without an
// explicit greeting get the generated acknowledgement.
func (r Record) GreetingText() string {
	if g := strings.TrimSpace(r.Greeting); g != "" {
		return g
	}
	return fmt.Sprintf("Understood. I am %s. How can I assist you today?", r.Name)
}

// Catalog is an ordered, read-only persona table keyed by ID.
type Catalog struct {
	records    []Record
	index      map[string]int
	categories []string
}

// NewCatalog validates records and builds a catalog preserving their order.
func NewCatalog(records []Record) (*Catalog, error) {
	if len(records) == 0 {
		return nil, errors.New("persona catalog is empty")
	}

	c := &Catalog{
		records: make([]Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	seenCategory := make(map[string]bool)

	for i, r := range records {
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			return nil, fmt.Errorf("persona #%d: id is required", i)
		}
		if _, dup := c.index[r.ID]; dup {
			return nil, fmt.Errorf("persona %q: duplicate id", r.ID)
		}
		if strings.TrimSpace(r.SystemPrompt) == "" {
			return nil, fmt.Errorf("persona %q: system_prompt is required", r.ID)
		}
		if r.Name == "" {
			r.Name = r.ID
		}
		if r.ShortName == "" {
			r.ShortName = r.Name
		}
		if r.Category == "" {
			r.Category = "General"
		}
		if !seenCategory[r.Category] {
			seenCategory[r.Category] = true
			c.categories = append(c.categories, r.Category)
		}
		c.index[r.ID] = len(c.records)
		c.records = append(c.records, r)
	}

	return c, nil
}

// Get looks up a persona by ID.
func (c *Catalog) Get(id string) (Record, error) {
	i, ok := c.index[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.records[i], nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// All returns every record in table order.
func (c *Catalog) All() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of personas.
func (c *Catalog) Len() int { return len(c.records) }

// Default returns the first record of the table.
func (c *Catalog) Default() Record { return c.records[0] }

// Categories returns category names in first-seen order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// InCategory returns the records of one category, matched case-insensitively.
func (c *Catalog) InCategory(category string) []Record {
	var out []Record
	for _, r := range c.records {
		if strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}
