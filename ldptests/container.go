package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func containerTests() []TestCase {
	return []TestCase{
		newTestCase("3.1.1-A", "createLDPC", MUST, fedoraSpec+"ldpc",
			"Implementations must support the creation and management of LDP containers.",
			createLDPC),
		newTestCase("3.1.1-B", "ldpcConstrainedByOnConflict", MUST, ldpSpec+"ldpr-gen-pubclireqs",
			"When a request is refused with 409 Conflict because of a server constraint, the response "+
				"must carry a Link header with rel=\"constrainedBy\".",
			ldpcConstrainedByOnConflict),
		newTestCase("3.1.1-C", "ldpcContainmentTriples", MUST, fedoraSpec+"ldpc",
			"LDP containers must list the resources they contain with ldp:contains triples.",
			ldpcContainmentTriples),
		newTestCase("3.1.1-D", "ldpcMembershipTriples", MUST, fedoraSpec+"ldpc",
			"A direct container's representation must include its membership configuration.",
			ldpcMembershipTriples),
		newTestCase("3.1.1-E", "ldpcMinimalContainerTriples", MUST, fedoraSpec+"ldpc",
			"With Prefer include=PreferContainment and omit=PreferMembership, the representation must "+
				"contain containment triples and no membership triples.",
			ldpcMinimalContainerTriples),
		newTestCase("3.1.1-F", "createDirectContainer", MUST, fedoraSpec+"ldpc",
			"Implementations must support the creation of LDP direct containers.",
			createDirectContainer),
		newTestCase("3.1.1-G", "createIndirectContainer", SHOULD, fedoraSpec+"ldpc",
			"Implementations should support the creation of LDP indirect containers.",
			createIndirectContainer),
	}
}

func createLDPC(t *ldtest.T, c *TestContext) {
	resp := c.post(t, c.ScratchURL,
		withFixture(c.fixture(t, "container", nil)),
		harness.InteractionModel(turtle.LDP+"BasicContainer"))
	m.In(t).Assert(resp, HasStatus(201))
	m.In(t).Assert(resp, HasHeader("Location"))
}

func ldpcConstrainedByOnConflict(t *ldtest.T, c *TestContext) {
	f := c.fixture(t, "container", nil)
	parent := c.create(t, c.ScratchURL, withFixture(f), harness.InteractionModel(turtle.LDP+"BasicContainer"))

	resp := c.post(t, parent, withFixture(f), harness.InteractionModel(turtle.LDP+"BasicContainer"))
	switch {
	case resp.IsSuccess():
		t.SkipWithReason("server accepted the nested container; no 409 to inspect")
	case resp.StatusCode == 409:
		m.In(t).For("409 response").Assert(resp, HasLinkRel(turtle.LDP+"constrainedBy"))
	default:
		m.In(t).Assert(resp, HasStatus(201, 409))
	}
}

func ldpcContainmentTriples(t *ldtest.T, c *TestContext) {
	parent := c.createContainer(t, c.ScratchURL)
	child := c.createContainer(t, parent)

	resp := c.send(t, "GET", parent, harness.Header("Accept", "text/turtle"))
	m.In(t).Require(resp, HasStatus(200))
	g := parseTurtle(t, resp)
	if !g.Contains(parent, turtle.LDP+"contains", child) {
		t.Errorf("representation of %s has no ldp:contains triple for %s", parent, child)
	}
}

func ldpcMembershipTriples(t *ldtest.T, c *TestContext) {
	membershipResource := c.createContainer(t, c.ScratchURL)
	f := c.fixture(t, "direct-container", map[string]string{"membershipResource": membershipResource})
	dc := c.create(t, c.ScratchURL, withFixture(f), harness.InteractionModel(turtle.LDP+"DirectContainer"))

	resp := c.send(t, "GET", dc)
	m.In(t).Require(resp, HasStatus(200))
	if !ContainsMembershipTriple(resp.BodyString()) {
		t.Errorf("representation of direct container %s has no membership triples", dc)
	}
}

func ldpcMinimalContainerTriples(t *ldtest.T, c *TestContext) {
	parent := c.createContainer(t, c.ScratchURL)
	c.createContainer(t, parent)

	resp := c.send(t, "GET", parent, preferHeader(
		[]string{turtle.LDP + "PreferContainment"},
		[]string{turtle.LDP + "PreferMembership"}))
	m.In(t).Require(resp, IsSuccessful())
	if ContainsMembershipTriple(resp.BodyString()) {
		t.Errorf("representation includes membership triples although PreferMembership was omitted")
	}
	if !parseTurtle(t, resp).HasPredicate(turtle.LDP + "contains") {
		t.Errorf("representation has no containment triples although PreferContainment was included")
	}
}

func createDirectContainer(t *ldtest.T, c *TestContext) {
	membershipResource := c.createContainer(t, c.ScratchURL)
	f := c.fixture(t, "direct-container", map[string]string{"membershipResource": membershipResource})
	dc := c.create(t, c.ScratchURL, withFixture(f), harness.InteractionModel(turtle.LDP+"DirectContainer"))

	resp := c.send(t, "HEAD", dc)
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Assert(resp, HasType(turtle.LDP+"DirectContainer"))
}

func createIndirectContainer(t *ldtest.T, c *TestContext) {
	membershipResource := c.createContainer(t, c.ScratchURL)
	f := c.fixture(t, "indirect-container", map[string]string{"membershipResource": membershipResource})
	ic := c.create(t, c.ScratchURL, withFixture(f), harness.InteractionModel(turtle.LDP+"IndirectContainer"))

	resp := c.send(t, "HEAD", ic)
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Assert(resp, HasType(turtle.LDP+"IndirectContainer"))
}
