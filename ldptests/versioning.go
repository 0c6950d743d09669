package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func versioningTests() []TestCase {
	return []TestCase{
		newTestCase("4.1-A", "timeMapLink", MUST, fedoraSpec+"resource-versioning",
			"A versioned resource must advertise its TimeMap with a Link rel=\"timemap\".",
			timeMapLink),
		newTestCase("4.2-A", "timeMapGet", MUST, fedoraSpec+"timemap-get",
			"GET on a TimeMap must succeed with an application/link-format representation.",
			timeMapGet),
		newTestCase("4.2-B", "mementoCreate", MUST, fedoraSpec+"timemap-post",
			"POST to a TimeMap must create a Memento advertised with a rel=\"type\" Memento link.",
			mementoCreate),
	}
}

// timeMapOf creates a container and returns the URL of its TimeMap.
func (c *TestContext) timeMapOf(t *ldtest.T) (string, string) {
	t.Helper()
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "GET", r)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Require(resp, HasLinkRel("timemap"))
	return r, resp.LinksByRel("timemap")[0]
}

func timeMapLink(t *ldtest.T, c *TestContext) {
	c.timeMapOf(t)
}

func timeMapGet(t *ldtest.T, c *TestContext) {
	_, timeMap := c.timeMapOf(t)
	resp := c.send(t, "GET", timeMap)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, HeaderValue("Content-Type").Should(m.StringHasPrefix("application/link-format")))
}

func mementoCreate(t *ldtest.T, c *TestContext) {
	_, timeMap := c.timeMapOf(t)
	resp := c.post(t, timeMap)
	m.In(t).Require(resp, HasStatus(201))
	m.In(t).Require(resp, HasHeader("Location"))

	memento := c.send(t, "HEAD", resp.Location())
	m.In(t).Require(memento, IsSuccessful())
	m.In(t).Assert(memento, HasType(turtle.Memento+"Memento"))
}
