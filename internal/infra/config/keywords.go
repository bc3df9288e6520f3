package config

import (
	"fmt"
	"os"

	"hearing_reminder_bot/internal/domain/intent"

	"gopkg.in/yaml.v3"
)

// LoadKeywords reads the keyword tables from a YAML file. An empty path
// returns the defaults; lists missing from the file keep their defaults.
func LoadKeywords(path string) (intent.Keywords, error) {
	if path == "" {
		return intent.DefaultKeywords(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return intent.Keywords{}, fmt.Errorf("read keywords file: %w", err)
	}

	var kw intent.Keywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return intent.Keywords{}, fmt.Errorf("parse keywords file %s: %w", path, err)
	}
	return kw.WithDefaults(), nil
}
