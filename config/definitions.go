package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"content-qa-cms/rules"

	"gopkg.in/yaml.v3"
)

//go:embed item_types.yaml
var defaultDefinitions []byte

// Definitions holds the item types and the languages content is translated into.
type Definitions struct {
	SourceLanguage string             `yaml:"source_language"`
	Languages      []string           `yaml:"languages"`
	ItemTypes      []rules.Definition `yaml:"item_types"`
}

// LoadDefinitions reads definitions from path, or the bundled ones when path is empty.
func LoadDefinitions(path string) (*Definitions, error) {
	if path == "" {
		return ParseDefinitions(defaultDefinitions)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item types: %w", err)
	}
	return ParseDefinitions(data)
}

func ParseDefinitions(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse item types: %w", err)
	}
	if err := defs.Validate(); err != nil {
		return nil, err
	}
	return &defs, nil
}

func (d *Definitions) Validate() error {
	if d.SourceLanguage == "" {
		return errors.New("source_language is required")
	}
	if !slices.Contains(d.Languages, d.SourceLanguage) {
		return fmt.Errorf("source language %q is not listed in languages", d.SourceLanguage)
	}
	seen := make(map[string]bool, len(d.ItemTypes))
	for _, def := range d.ItemTypes {
		if err := def.Validate(); err != nil {
			return err
		}
		if seen[def.Name] {
			return fmt.Errorf("duplicate item type %q", def.Name)
		}
		seen[def.Name] = true
	}
	return nil
}

func (d *Definitions) Lookup(name string) (rules.Definition, bool) {
	for _, def := range d.ItemTypes {
		if def.Name == name {
			return def, true
		}
	}
	return rules.Definition{}, false
}

// TranslationLanguages returns the target languages, i.e. every language but the source.
func (d *Definitions) TranslationLanguages() []string {
	langs := make([]string, 0, len(d.Languages))
	for _, lang := range d.Languages {
		if lang != d.SourceLanguage {
			langs = append(langs, lang)
		}
	}
	return langs
}
