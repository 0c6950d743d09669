package ldptests

import (
	"fmt"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"
)

const (
	fedoraSpec = "https://fcrepo.github.io/fcrepo-specification/#"
	ldpSpec    = "https://www.w3.org/TR/ldp/#"
)

// TestCase is one conformance test.
type TestCase struct {
	Descriptor testinfo.TestDescriptor
	Run        func(t *ldtest.T, c *TestContext)
}

type testClass struct {
	name  string
	tests func() []TestCase
}

// Classes run in this order.
func testClasses() []testClass {
	return []testClass{
		{"Container", containerTests},
		{"LdprsGet", ldprsGetTests},
		{"HttpHead", httpHeadTests},
		{"HttpOptions", httpOptionsTests},
		{"HttpPost", httpPostTests},
		{"HttpPut", httpPutTests},
		{"HttpPatch", httpPatchTests},
		{"HttpDelete", httpDeleteTests},
		{"LdpnrGet", ldpnrGetTests},
		{"ExternalBinaryContent", externalBinaryContentTests},
		{"Versioning", versioningTests},
		{"Notifications", notificationTests},
		{"WebACL", webACLTests},
	}
}

func newTestCase(
	id, title string,
	level testinfo.RequirementLevel,
	specLink, description string,
	run func(*ldtest.T, *TestContext),
) TestCase {
	return TestCase{
		Descriptor: testinfo.TestDescriptor{
			ID:          id,
			Title:       title,
			Description: description,
			SpecLink:    specLink,
			Level:       level,
		},
		Run: run,
	}
}

// Catalog registers every test's descriptor and returns the tests keyed by title. A test's
// priority is its position within its class.
func Catalog(registry *testinfo.Registry) (map[string]TestCase, error) {
	ret := make(map[string]TestCase)
	for _, class := range testClasses() {
		for i, tc := range class.tests() {
			tc.Descriptor.TestClass = class.name
			if tc.Descriptor.Priority == 0 {
				tc.Descriptor.Priority = i + 1
			}
			d, err := registry.Register(tc.Descriptor)
			if err != nil {
				return nil, fmt.Errorf("registering %s tests: %w", class.name, err)
			}
			tc.Descriptor = d
			ret[d.Title] = tc
		}
	}
	return ret, nil
}

// RunAll runs the registered tests, one scope per class and one subscope per test, so that the
// last element of every test ID is the test's title.
func RunAll(t *ldtest.T, registry *testinfo.Registry, cases map[string]TestCase, c *TestContext) {
	for _, class := range registry.Classes() {
		descriptors := registry.ForClass(class)
		t.Run(class, func(t *ldtest.T) {
			for _, d := range descriptors {
				tc, ok := cases[d.Title]
				if !ok {
					continue
				}
				t.Run(d.Title, func(t *ldtest.T) {
					t.Debug("%s: %s", d.ID, d.Description)
					tc.Run(t, c)
				})
			}
		})
	}
}

// LevelFilter excludes tests whose descriptor's requirement level is not listed. Class scopes and
// tests without a descriptor are never excluded by it.
func LevelFilter(registry *testinfo.Registry, levels []testinfo.RequirementLevel) ldtest.Filter {
	return ldtest.FilterFunc(func(id ldtest.TestID) bool {
		if len(id) < 2 {
			return true
		}
		d, err := registry.Lookup(id.Last())
		if err != nil {
			return true
		}
		for _, l := range levels {
			if d.Level == l {
				return true
			}
		}
		return false
	})
}

// Requirement levels, for brevity in the test tables.
const (
	MUST   = testinfo.MUST
	SHOULD = testinfo.SHOULD
	MAY    = testinfo.MAY
)
