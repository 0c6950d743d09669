package ldptests

import (
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/data"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

var membershipPredicates = []string{ //nolint:gochecknoglobals
	"hasMemberRelation",
	"isMemberOfRelation",
	"membershipResource",
	"insertedContentRelation",
}

// ContainsMembershipTriple reports whether body mentions any LDP membership predicate. It is a
// plain substring check, not an RDF query, so unrelated text containing one of the names also
// counts.
func ContainsMembershipTriple(body string) bool {
	return helpers.ContainsAnySubstring(body, membershipPredicates...)
}

// send issues a request and fails the test on a transport error.
func (c *TestContext) send(t *ldtest.T, method, url string, options ...harness.RequestOption) *harness.Response {
	t.Helper()
	resp, err := c.Harness.Send(method, url, options...)
	if err != nil {
		t.Errorf("request failed: %s", err)
		t.FailNow()
	}
	t.Debug("%s %s -> %d", method, url, resp.StatusCode)
	return resp
}

// post sends a POST and registers whatever it created with the cleanup tracker before checking
// anything else about the response.
func (c *TestContext) post(t *ldtest.T, url string, options ...harness.RequestOption) *harness.Response {
	t.Helper()
	resp := c.send(t, "POST", url, options...)
	c.track(resp)
	return resp
}

// put is post for PUT.
func (c *TestContext) put(t *ldtest.T, url string, options ...harness.RequestOption) *harness.Response {
	t.Helper()
	resp := c.send(t, "PUT", url, options...)
	if resp.StatusCode == 201 && resp.Location() == "" {
		c.Tracker.RegisterResource(url)
	}
	c.track(resp)
	return resp
}

func (c *TestContext) track(resp *harness.Response) {
	if resp.IsSuccess() && resp.Location() != "" {
		c.Tracker.RegisterResource(resp.Location())
	}
}

// create POSTs to parent, requires 201, and returns the new resource's URL.
func (c *TestContext) create(t *ldtest.T, parent string, options ...harness.RequestOption) string {
	t.Helper()
	resp := c.post(t, parent, options...)
	m.In(t).For("creating resource in "+parent).Require(resp, HasStatus(201))
	location := resp.Location()
	if location == "" {
		t.Errorf("POST to %s returned no Location header", parent)
		t.FailNow()
	}
	return location
}

// createContainer creates a basic container from the container fixture.
func (c *TestContext) createContainer(t *ldtest.T, parent string, options ...harness.RequestOption) string {
	t.Helper()
	f := c.fixture(t, "container", nil)
	return c.create(t, parent, append([]harness.RequestOption{
		withFixture(f),
		harness.InteractionModel(turtle.LDP + "BasicContainer"),
	}, options...)...)
}

// createBinary creates a non-RDF source from the binary fixture.
func (c *TestContext) createBinary(t *ldtest.T, parent string, options ...harness.RequestOption) string {
	t.Helper()
	f := c.fixture(t, "binary", nil)
	return c.create(t, parent, append([]harness.RequestOption{
		withFixture(f),
		harness.InteractionModel(turtle.LDP + "NonRDFSource"),
	}, options...)...)
}

func (c *TestContext) fixture(t *ldtest.T, name string, vars map[string]string) data.Fixture {
	t.Helper()
	f, err := c.Fixtures.Get(name, vars)
	if err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
	return f
}

func withFixture(f data.Fixture) harness.RequestOption {
	return harness.Body(f.ContentType, f.Data)
}

// parseTurtle parses a response body, resolving relative IRIs against the request URL.
func parseTurtle(t *ldtest.T, resp *harness.Response) *turtle.Graph {
	t.Helper()
	g, err := turtle.Parse(resp.BodyString(), resp.URL)
	if err != nil {
		t.Errorf("%s %s: %s", resp.Method, resp.URL, err)
		t.FailNow()
	}
	return g
}

func preferHeader(include, omit []string) harness.RequestOption {
	v := "return=representation"
	if len(include) != 0 {
		v += `; include="` + strings.Join(include, " ") + `"`
	}
	if len(omit) != 0 {
		v += `; omit="` + strings.Join(omit, " ") + `"`
	}
	return harness.Header("Prefer", v)
}

func containsFold(list []string, s string) bool {
	for _, x := range list {
		if strings.EqualFold(x, s) {
			return true
		}
	}
	return false
}

// fixtureVariant returns the variant of a parameterized fixture whose parameter key has value.
func (c *TestContext) fixtureVariant(t *ldtest.T, name, key, value string) data.Fixture {
	t.Helper()
	all, err := c.Fixtures.Variants(name, nil)
	if err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
	for _, f := range all {
		if f.Params[key] == value {
			return f
		}
	}
	t.Errorf("fixture %s has no variant with %s=%s", name, key, value)
	t.FailNow()
	return data.Fixture{}
}
