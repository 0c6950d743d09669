package ldptests

import (
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	"github.com/google/uuid"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func httpPutTests() []TestCase {
	return []TestCase{
		newTestCase("3.6-A", "httpPutCreate", MAY, fedoraSpec+"http-put",
			"Implementations may allow clients to create resources with PUT.",
			httpPutCreate),
		newTestCase("3.6-B", "httpPutUpdateTriples", MUST, fedoraSpec+"http-put-ldprs",
			"PUT with a Turtle body must replace the client-managed triples of an LDP-RS.",
			httpPutUpdateTriples),
		newTestCase("3.6-C", "httpPutUpdateDisallowedTriples", MUST, fedoraSpec+"http-put-ldprs",
			"A PUT that would modify server-managed triples must fail with 409 Conflict and a "+
				"constrainedBy link.",
			httpPutUpdateDisallowedTriples),
		newTestCase("3.6-D", "httpPutChangeInteractionModel", MUST, fedoraSpec+"http-put",
			"A PUT that would change the interaction model of a resource must be rejected with 409 Conflict.",
			httpPutChangeInteractionModel),
		newTestCase("3.6-E", "httpPutDigestMismatch", MUST, fedoraSpec+"http-put-ldpnr",
			"A PUT of binary content with a Digest header that does not match must be rejected with 409 Conflict.",
			httpPutDigestMismatch),
	}
}

func httpPutCreate(t *ldtest.T, c *TestContext) {
	target := strings.TrimSuffix(c.ScratchURL, "/") + "/put-" + uuid.NewString()
	resp := c.put(t, target,
		withFixture(c.fixture(t, "container", nil)),
		harness.InteractionModel(turtle.LDP+"BasicContainer"))
	if resp.StatusCode == 405 || resp.StatusCode == 409 || resp.StatusCode == 501 {
		t.SkipWithReason("server does not support creating resources with PUT")
	}
	m.In(t).Assert(resp, HasStatus(201, 204))
}

func httpPutUpdateTriples(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	f := c.fixtureVariant(t, "resource", "title", "Put class Container")

	resp := c.put(t, r, withFixture(f))
	m.In(t).Require(resp, IsSuccessful())

	get := c.send(t, "GET", r, harness.Header("Accept", "text/turtle"))
	m.In(t).Require(get, HasStatus(200))
	if !parseTurtle(t, get).Contains(r, turtle.DCTerms+"title", "Put class Container") {
		t.Errorf("updated title was not persisted for %s", r)
	}
}

func httpPutUpdateDisallowedTriples(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.put(t, r, withFixture(c.fixture(t, "server-managed-triple", nil)))
	m.In(t).Require(resp, HasStatus(409))
	m.In(t).Assert(resp, HasLinkRel(turtle.LDP+"constrainedBy"))
}

func httpPutChangeInteractionModel(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.put(t, r,
		withFixture(c.fixture(t, "container", nil)),
		harness.InteractionModel(turtle.LDP+"DirectContainer"))
	m.In(t).Assert(resp, HasStatus(409))
}

func httpPutDigestMismatch(t *ldtest.T, c *TestContext) {
	b := c.createBinary(t, c.ScratchURL)
	resp := c.put(t, b,
		withFixture(c.fixture(t, "binary", nil)),
		harness.Header("Digest", "md5=1B2M2Y8AsgTpgAmY7PhCfg=="))
	m.In(t).Assert(resp, HasStatus(409))
}
