package data

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data-files
var dataFilesRoot embed.FS

const (
	dataBasePath = "data-files"
	indexFile    = "index.yaml"
)

// Fixture is a request body that was read from a data file, after substituting constants,
// parameters and variables. A fixture with a parameter list yields one Fixture per parameter set.
type Fixture struct {
	Name        string
	FilePath    string
	ContentType string
	Params      map[string]string
	Data        []byte
}

// String returns the body as text.
func (f Fixture) String() string {
	return string(f.Data)
}

// ParamsString describes the parameter set, for use in test names.
func (f Fixture) ParamsString() string {
	if len(f.Params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f.Params))
	for k := range f.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ps := make([]string, 0, len(keys))
	for _, k := range keys {
		ps = append(ps, k+"="+f.Params[k])
	}
	return "(" + strings.Join(ps, ",") + ")"
}

type fixtureEntry struct {
	Name        string            `yaml:"name"`
	File        string            `yaml:"file"`
	ContentType string            `yaml:"content-type"`
	Constants   substitutionSet   `yaml:"constants"`
	Parameters  []substitutionSet `yaml:"parameters"`
}

// FixtureSet is the parsed fixture index.
type FixtureSet struct {
	entries map[string]fixtureEntry
}

// LoadFixtureSet reads the embedded index and checks that every file it names exists.
func LoadFixtureSet() (*FixtureSet, error) {
	raw, err := dataFilesRoot.ReadFile(dataBasePath + "/" + indexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture index: %w", err)
	}
	var index struct {
		Fixtures []fixtureEntry `yaml:"fixtures"`
	}
	if err := yaml.Unmarshal(raw, &index); err != nil {
		return nil, fmt.Errorf("malformed fixture index: %w", err)
	}
	s := &FixtureSet{entries: make(map[string]fixtureEntry)}
	for _, e := range index.Fixtures {
		if _, exists := s.entries[e.Name]; exists {
			return nil, fmt.Errorf("fixture %q is defined twice", e.Name)
		}
		if _, err := dataFilesRoot.ReadFile(dataBasePath + "/" + e.File); err != nil {
			return nil, fmt.Errorf("fixture %q: %w", e.Name, err)
		}
		s.entries[e.Name] = e
	}
	return s, nil
}

// Names returns the fixture names, sorted.
func (s *FixtureSet) Names() []string {
	ret := make([]string, 0, len(s.entries))
	for n := range s.entries {
		ret = append(ret, n)
	}
	sort.Strings(ret)
	return ret
}

// Get returns a fixture with its constants and the given variables substituted. For a
// parameterized fixture the first parameter set is used.
func (s *FixtureSet) Get(name string, vars map[string]string) (Fixture, error) {
	all, err := s.Variants(name, vars)
	if err != nil {
		return Fixture{}, err
	}
	return all[0], nil
}

// MustGet is Get for fixtures that are known to exist.
func (s *FixtureSet) MustGet(name string, vars map[string]string) Fixture {
	f, err := s.Get(name, vars)
	if err != nil {
		panic(err)
	}
	return f
}

// Variants returns one Fixture per parameter set, or a single Fixture if the entry has none.
func (s *FixtureSet) Variants(name string, vars map[string]string) ([]Fixture, error) {
	e, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown fixture %q", name)
	}
	raw, err := dataFilesRoot.ReadFile(dataBasePath + "/" + e.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", e.File, err)
	}
	paramSets := e.Parameters
	if len(paramSets) == 0 {
		paramSets = []substitutionSet{nil}
	}
	ret := make([]Fixture, 0, len(paramSets))
	for _, params := range paramSets {
		transformed := replaceVariables(raw, e.Constants)
		transformed = replaceVariables(transformed, params)
		transformed = replaceVariables(transformed, vars)
		ret = append(ret, Fixture{
			Name:        e.Name,
			FilePath:    e.File,
			ContentType: e.ContentType,
			Params:      params,
			Data:        transformed,
		})
	}
	return ret, nil
}
