package ldptests

import (
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

const preferInboundReferences = "http://fedora.info/definitions/fcrepo#PreferInboundReferences"

func ldprsGetTests() []TestCase {
	return []TestCase{
		newTestCase("3.2.1-A", "ldprsGetTurtle", MUST, fedoraSpec+"http-get-ldprs",
			"An LDP-RS must be available as text/turtle.",
			ldprsGetTurtle),
		newTestCase("3.2.1-B", "additionalValuesForPreferHeader", MUST, fedoraSpec+"http-get-ldprs",
			"The Prefer header must accept the PreferInboundReferences include value.",
			additionalValuesForPreferHeader),
		newTestCase("3.2.1-C", "responsePreferenceAppliedHeader", MUST, fedoraSpec+"http-get-ldprs",
			"Responses to requests that honor a Prefer header must include a Preference-Applied header.",
			responsePreferenceAppliedHeader),
		newTestCase("3.2.1-D", "ldprsTypeLinks", MUST, ldpSpec+"ldpr-gen-linktypehdr",
			"Responses to GET on an LDP-RS must advertise ldp:Resource with a rel=\"type\" link.",
			ldprsTypeLinks),
		newTestCase("3.2.1-E", "ldprsETag", SHOULD, ldpSpec+"ldpr-gen-etags",
			"Responses to GET on an LDP-RS should include an ETag header.",
			ldprsETag),
	}
}

func ldprsGetTurtle(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "GET", r, harness.Header("Accept", "text/turtle"))
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, HeaderValue("Content-Type").Should(m.StringHasPrefix("text/turtle")))
	g := parseTurtle(t, resp)
	if g.Len() == 0 {
		t.Errorf("representation of %s has no triples", r)
	}
}

func additionalValuesForPreferHeader(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "GET", r, preferHeader([]string{preferInboundReferences}, nil))
	m.In(t).Assert(resp, HasStatus(200))
}

func responsePreferenceAppliedHeader(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "GET", r, harness.Header("Prefer", "return=minimal"))
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Assert(resp, HeaderValue("Preference-Applied").Should(m.StringContains("return=minimal")))
	if strings.TrimSpace(resp.BodyString()) != "" && parseTurtle(t, resp).HasPredicate(turtle.LDP+"contains") {
		t.Errorf("minimal representation includes containment triples")
	}
}

func ldprsTypeLinks(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "GET", r)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, HasType(turtle.LDP+"Resource"))
	m.In(t).Assert(resp, HasType(turtle.LDP+"RDFSource"))
}

func ldprsETag(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "GET", r)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, HasHeader("ETag"))
}
