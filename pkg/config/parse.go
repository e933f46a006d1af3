package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// decodeStrict decodes a single YAML document rejecting unknown fields
func decodeStrict(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseScenarioYAML parses a Scenario from YAML bytes, applies defaults and validates it.
// This is used for APIs where scenario is provided as payload (not via filesystem).
func ParseScenarioYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := decodeStrict(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
	}

	scenario.ApplyDefaults()
	if err := ValidateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ParseScenarioYAMLString parses a Scenario from a YAML string and validates it.
func ParseScenarioYAMLString(yamlText string) (*Scenario, error) {
	return ParseScenarioYAML([]byte(yamlText))
}

// ParseCatalogYAML parses a catalog file. Cost fields that are omitted keep
// their default value.
func ParseCatalogYAML(data []byte) (*CatalogFile, error) {
	file := CatalogFile{Costs: DefaultCosts()}
	if err := decodeStrict(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	if err := validateCosts(&file.Costs); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	seen := make(map[string]bool, len(file.Scenarios))
	for i := range file.Scenarios {
		sc := &file.Scenarios[i]
		sc.ApplyDefaults()
		if sc.Name == "" {
			return nil, fmt.Errorf("invalid catalog: scenario %d: name cannot be empty", i)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("invalid catalog: duplicate scenario name: %s", sc.Name)
		}
		seen[sc.Name] = true
		if err := ValidateScenario(sc); err != nil {
			return nil, fmt.Errorf("invalid catalog: scenario %s: %w", sc.Name, err)
		}
	}

	return &file, nil
}
