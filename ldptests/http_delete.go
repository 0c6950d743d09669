package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func httpDeleteTests() []TestCase {
	return []TestCase{
		newTestCase("3.8.1-A", "httpDeleteOptionsCheck", MUST, fedoraSpec+"http-delete",
			"When DELETE is advertised in the Allow header, a DELETE of the resource must succeed.",
			httpDeleteOptionsCheck),
		newTestCase("3.8.1-B", "httpDeleteRecursive", MUST, fedoraSpec+"http-delete",
			"A DELETE of a container must also remove the resources it contains.",
			httpDeleteRecursive),
		newTestCase("3.8.1-C", "httpDeleteGone", SHOULD, fedoraSpec+"http-delete",
			"A GET of a deleted resource should answer 410 Gone.",
			httpDeleteGone),
	}
}

// requireDeletable skips the test unless OPTIONS on url advertises DELETE.
func (c *TestContext) requireDeletable(t *ldtest.T, url string) {
	t.Helper()
	resp := c.send(t, "OPTIONS", url)
	m.In(t).Require(resp, IsSuccessful())
	if !resp.Allows("DELETE") {
		t.SkipWithReason("DELETE is not advertised in the Allow header of " + url)
	}
}

func httpDeleteOptionsCheck(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	c.requireDeletable(t, r)
	resp := c.send(t, "DELETE", r)
	m.In(t).Assert(resp, HasStatus(200, 202, 204))
}

func httpDeleteRecursive(t *ldtest.T, c *TestContext) {
	parent := c.createContainer(t, c.ScratchURL)
	child := c.createContainer(t, parent)
	c.requireDeletable(t, parent)

	m.In(t).Require(c.send(t, "DELETE", parent), IsSuccessful())
	m.In(t).For("GET of contained resource").Assert(c.send(t, "GET", child), HasStatus(404, 410))
}

func httpDeleteGone(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	c.requireDeletable(t, r)

	m.In(t).Require(c.send(t, "DELETE", r), IsSuccessful())
	m.In(t).Assert(c.send(t, "GET", r), HasStatus(410))
}
