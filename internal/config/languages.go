package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gitlab.com/codeprep.net/internal/domain"
)

//go:embed languages.yaml
var defaultCatalog []byte

type languageCatalog struct {
	Languages []domain.LanguageConfig `yaml:"languages"`
}

// LoadLanguageCatalog reads the catalog at path, or the built-in one when path is empty
func LoadLanguageCatalog(path string) ([]domain.LanguageConfig, error) {
	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read language catalog: %w", err)
		}
		data = raw
	}
	return ParseLanguageCatalog(data)
}

func ParseLanguageCatalog(data []byte) ([]domain.LanguageConfig, error) {
	var catalog languageCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse language catalog: %w", err)
	}

	seen := make(map[string]bool)
	for i := range catalog.Languages {
		lang := &catalog.Languages[i]
		lang.ID = strings.ToLower(strings.TrimSpace(lang.ID))
		if lang.ID == "" {
			return nil, fmt.Errorf("language #%d has no id", i)
		}
		if seen[lang.ID] {
			return nil, fmt.Errorf("duplicate language id %q", lang.ID)
		}
		seen[lang.ID] = true
		if lang.RunCommand == "" {
			return nil, fmt.Errorf("language %q has no run_command", lang.ID)
		}
		if lang.SourceFile == "" {
			lang.SourceFile = "main" + lang.Extension
		}
	}
	return catalog.Languages, nil
}
