package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"personachat/internal/logging"
)

// catalogFile is the on-disk shape of a persona catalog.
type catalogFile struct {
	Personas []Record `yaml:"personas"`
}

// LoadFile reads a YAML persona catalog. The file replaces the builtin table.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML persona catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse persona catalog: %w", err)
	}
	c, err := NewCatalog(f.Personas)
	if err != nil {
		return nil, err
	}
	logging.Get(logging.CategoryPersona).Info("loaded %d personas in %d categories", c.Len(), len(c.categories))
	return c, nil
}

// Resolve returns the catalog at path, or the builtin catalog when path is empty.
func Resolve(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}
