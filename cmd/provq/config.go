package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SearchableConfig restricts which event fields and attributes a query
// may reference outside its WHERE clause. Empty lists leave the
// corresponding dimension unrestricted.
type SearchableConfig struct {
	Fields     []string `yaml:"fields"`
	Attributes []string `yaml:"attributes"`
}

// LoadSearchableConfig reads a searchable-field configuration from a
// YAML file.
func LoadSearchableConfig(path string) (*SearchableConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg SearchableConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
