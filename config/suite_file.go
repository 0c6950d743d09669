package config

import (
	"fmt"
	"os"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"

	"gopkg.in/yaml.v3"
)

// SuiteDefinition restricts a run to some test classes and, optionally, to some tests within
// them. An empty list means no restriction.
type SuiteDefinition struct {
	Name    string   `yaml:"name"`
	Classes []string `yaml:"classes"`
	// Tests holds test titles or clause IDs.
	Tests []string `yaml:"tests"`
}

// LoadSuiteFile reads a suite definition. An empty path yields the unrestricted definition.
func LoadSuiteFile(path string) (SuiteDefinition, error) {
	if path == "" {
		return SuiteDefinition{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return SuiteDefinition{}, fmt.Errorf("reading suite file: %w", err)
	}
	var def SuiteDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return SuiteDefinition{}, fmt.Errorf("malformed suite file %s: %w", path, err)
	}
	return def, nil
}

// IncludesClass returns true if the class is part of the suite.
func (d SuiteDefinition) IncludesClass(class string) bool {
	return len(d.Classes) == 0 || helpers.SliceContains(class, d.Classes)
}

// IncludesTest returns true if a test with this title or clause ID is part of the suite.
func (d SuiteDefinition) IncludesTest(title, id string) bool {
	return len(d.Tests) == 0 || helpers.SliceContains(title, d.Tests) || helpers.SliceContains(id, d.Tests)
}
