package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

const sparqlUpdateType = "application/sparql-update"

func httpPatchTests() []TestCase {
	return []TestCase{
		newTestCase("3.7-A", "supportPatch", MUST, fedoraSpec+"http-patch",
			"LDP-RSs must support PATCH and advertise it in the Allow header.",
			supportPatch),
		newTestCase("3.7-B", "ldpPatchContentTypeSupport", MUST, fedoraSpec+"http-patch",
			"The Accept-Patch header of an LDP-RS must include application/sparql-update.",
			ldpPatchContentTypeSupport),
		newTestCase("3.7-C", "serverManagedPropertiesModification", MUST, fedoraSpec+"http-patch",
			"A PATCH that would modify server-managed triples must fail with 409 Conflict.",
			serverManagedPropertiesModification),
		newTestCase("3.7-D", "statementNotPersistedConstrainedBy", MUST, fedoraSpec+"http-patch",
			"Triples inserted with a successful SPARQL Update PATCH must be persisted.",
			patchInsertPersisted),
		newTestCase("3.7-E", "badPatchRequest", MUST, fedoraSpec+"http-patch",
			"A malformed SPARQL Update must be rejected with 400 Bad Request.",
			badPatchRequest),
		newTestCase("3.7-F", "unsupportedPatchContentType", SHOULD, fedoraSpec+"http-patch",
			"A PATCH with an unsupported content type should be rejected with 415 Unsupported Media Type.",
			unsupportedPatchContentType),
	}
}

func supportPatch(t *ldtest.T, c *TestContext) {
	resp := c.send(t, "OPTIONS", c.createContainer(t, c.ScratchURL))
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Assert(resp, AllowsMethod("PATCH"))
}

func ldpPatchContentTypeSupport(t *ldtest.T, c *TestContext) {
	resp := c.send(t, "GET", c.createContainer(t, c.ScratchURL))
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, HeaderListIncludes("Accept-Patch", sparqlUpdateType))
}

func serverManagedPropertiesModification(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "PATCH", r, withFixture(c.fixture(t, "sparql-server-managed", nil)))
	m.In(t).Require(resp, HasStatus(409))
	m.In(t).Assert(resp, HasLinkRel(turtle.LDP+"constrainedBy"))
}

func patchInsertPersisted(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "PATCH", r, withFixture(c.fixture(t, "sparql-insert", nil)))
	m.In(t).Require(resp, IsSuccessful())

	get := c.send(t, "GET", r, harness.Header("Accept", "text/turtle"))
	m.In(t).Require(get, HasStatus(200))
	if !parseTurtle(t, get).Contains(r, turtle.DCTerms+"title", "Patch class Container") {
		t.Errorf("inserted title was not persisted for %s", r)
	}
}

func badPatchRequest(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "PATCH", r, withFixture(c.fixture(t, "sparql-malformed", nil)))
	m.In(t).Assert(resp, HasStatus(400))
}

func unsupportedPatchContentType(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	f := c.fixture(t, "sparql-insert", nil)
	resp := c.send(t, "PATCH", r, harness.Body("text/plain", f.Data))
	m.In(t).Assert(resp, HasStatus(415))
}
