package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func webACLTests() []TestCase {
	return []TestCase{
		newTestCase("5.0-A", "aclLink", MUST, fedoraSpec+"link-rel-acl",
			"A resource must advertise its ACL with a Link rel=\"acl\".",
			aclLink),
		newTestCase("5.0-B", "aclDeniesUnlistedAgent", MUST, fedoraSpec+"access-control",
			"An ACL granting access only to the root controller must deny reads by any other user.",
			aclDeniesUnlistedAgent),
		newTestCase("5.0-C", "aclAllowsListedAgent", MUST, fedoraSpec+"access-control",
			"An ACL granting access to the root controller must allow that user to read the resource.",
			aclAllowsListedAgent),
	}
}

func (c *TestContext) aclOf(t *ldtest.T, r string) string {
	t.Helper()
	resp := c.send(t, "GET", r)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Require(resp, HasLinkRel("acl"))
	return resp.LinksByRel("acl")[0]
}

// restrictToRoot creates a container whose ACL grants access only to the root controller.
func (c *TestContext) restrictToRoot(t *ldtest.T) string {
	t.Helper()
	webID := c.RootController.WebID
	if webID == "" {
		t.SkipWithReason("root controller has no WebID to name in an ACL")
	}
	r := c.createContainer(t, c.ScratchURL)
	f := c.fixture(t, "acl-owner-only", map[string]string{"agent": webID, "resource": r})
	resp := c.put(t, c.aclOf(t, r), withFixture(f))
	m.In(t).Require(resp, IsSuccessful())
	return r
}

func aclLink(t *ldtest.T, c *TestContext) {
	c.aclOf(t, c.createContainer(t, c.ScratchURL))
}

func aclDeniesUnlistedAgent(t *ldtest.T, c *TestContext) {
	t.RequireCapability(framework.CapabilityPermissionlessUser)
	r := c.restrictToRoot(t)
	resp := c.send(t, "GET", r, harness.AsUser(PermissionlessUser))
	m.In(t).Assert(resp, HasStatus(403))
}

func aclAllowsListedAgent(t *ldtest.T, c *TestContext) {
	r := c.restrictToRoot(t)
	m.In(t).Assert(c.send(t, "GET", r), HasStatus(200))
}
