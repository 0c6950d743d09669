package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func httpOptionsTests() []TestCase {
	return []TestCase{
		newTestCase("3.4-A", "httpOptionsSupport", MUST, fedoraSpec+"http-options",
			"Any LDPR must support OPTIONS.",
			httpOptionsSupport),
		newTestCase("3.4-B", "httpOptionsSupportAllow", MUST, fedoraSpec+"http-options",
			"The response to OPTIONS must include an Allow header listing at least GET, HEAD and OPTIONS.",
			httpOptionsSupportAllow),
		newTestCase("3.4-C", "httpOptionsAcceptPost", MUST, ldpSpec+"header-accept-post",
			"The response to OPTIONS on a container must include an Accept-Post header.",
			httpOptionsAcceptPost),
		newTestCase("3.4-D", "httpOptionsAcceptPatch", MUST, ldpSpec+"ldprs-acceptpatch",
			"The response to OPTIONS on an LDP-RS must include an Accept-Patch header.",
			httpOptionsAcceptPatch),
	}
}

func httpOptionsSupport(t *ldtest.T, c *TestContext) {
	resp := c.send(t, "OPTIONS", c.createContainer(t, c.ScratchURL))
	m.In(t).Assert(resp, IsSuccessful())
}

func httpOptionsSupportAllow(t *ldtest.T, c *TestContext) {
	resp := c.send(t, "OPTIONS", c.createContainer(t, c.ScratchURL))
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Require(resp, HasHeader("Allow"))
	for _, method := range []string{"GET", "HEAD", "OPTIONS"} {
		m.In(t).Assert(resp, AllowsMethod(method))
	}
}

func httpOptionsAcceptPost(t *ldtest.T, c *TestContext) {
	resp := c.send(t, "OPTIONS", c.createContainer(t, c.ScratchURL))
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Assert(resp, HasHeader("Accept-Post"))
}

func httpOptionsAcceptPatch(t *ldtest.T, c *TestContext) {
	resp := c.send(t, "OPTIONS", c.createContainer(t, c.ScratchURL))
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Assert(resp, HasHeader("Accept-Patch"))
}
