// Package testinfo describes the specification clauses that the conformance tests check.
//
// Every test is registered with a TestDescriptor before anything runs. Titles are unique and
// are the key by which results are matched back to their clause.
package testinfo

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

type RequirementLevel int

const (
	MUST RequirementLevel = iota
	SHOULD
	MAY
)

// AllRequirementLevels lists the levels in order of decreasing strictness.
var AllRequirementLevels = []RequirementLevel{MUST, SHOULD, MAY} //nolint:gochecknoglobals

func (l RequirementLevel) String() string {
	switch l {
	case MUST:
		return "MUST"
	case SHOULD:
		return "SHOULD"
	case MAY:
		return "MAY"
	default:
		return fmt.Sprintf("RequirementLevel(%d)", int(l))
	}
}

// ParseRequirementLevel accepts MUST, SHOULD or MAY in any case.
func ParseRequirementLevel(s string) (RequirementLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MUST":
		return MUST, nil
	case "SHOULD":
		return SHOULD, nil
	case "MAY":
		return MAY, nil
	}
	return 0, fmt.Errorf("invalid requirement level %q", s)
}

var (
	ErrDuplicateTitle = errors.New("duplicate test title")
	ErrNotFound       = errors.New("no test registered with this title")
)

// TestDescriptor is the metadata of one conformance test. It is immutable once registered.
type TestDescriptor struct {
	// ID is the specification clause, e.g. "3.1.1-A".
	ID          string
	TestClass   string
	Title       string
	Description string
	SpecLink    string
	Level       RequirementLevel
	// Priority orders tests within a class; lower runs first.
	Priority int
}

// DisplayLabel is the stable label that report rows are keyed and sorted by.
func (d TestDescriptor) DisplayLabel() string {
	return d.ID + " " + d.Title
}

// Registry is the append-only set of registered descriptors. It is safe to read concurrently
// once registration has finished.
type Registry struct {
	byTitle map[string]int
	all     []TestDescriptor
	classes []string
	lock    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{byTitle: make(map[string]int)}
}

// Register adds a descriptor. The title must not already be registered.
func (r *Registry) Register(d TestDescriptor) (TestDescriptor, error) {
	if d.Title == "" || d.ID == "" || d.TestClass == "" {
		return TestDescriptor{}, fmt.Errorf("test descriptor needs an ID, a class and a title: %+v", d)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, exists := r.byTitle[d.Title]; exists {
		return TestDescriptor{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, d.Title)
	}
	r.byTitle[d.Title] = len(r.all)
	r.all = append(r.all, d)
	if !slices.Contains(r.classes, d.TestClass) {
		r.classes = append(r.classes, d.TestClass)
	}
	return d, nil
}

// MustRegister is Register for static tables, where a duplicate is a programming error.
func (r *Registry) MustRegister(d TestDescriptor) TestDescriptor {
	ret, err := r.Register(d)
	if err != nil {
		panic(err)
	}
	return ret
}

func (r *Registry) Lookup(title string) (TestDescriptor, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if i, ok := r.byTitle[title]; ok {
		return r.all[i], nil
	}
	return TestDescriptor{}, fmt.Errorf("%w: %q", ErrNotFound, title)
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.all)
}

// Classes returns the test class names in the order they were first registered.
func (r *Registry) Classes() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]string(nil), r.classes...)
}

// ForClass returns the descriptors of one class by ascending priority. Descriptors with the same
// priority keep their registration order.
func (r *Registry) ForClass(class string) []TestDescriptor {
	r.lock.RLock()
	var ret []TestDescriptor
	for _, d := range r.all {
		if d.TestClass == class {
			ret = append(ret, d)
		}
	}
	r.lock.RUnlock()
	slices.SortStableFunc(ret, func(a, b TestDescriptor) int { return a.Priority - b.Priority })
	return ret
}
