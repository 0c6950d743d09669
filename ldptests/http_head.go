package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func httpHeadTests() []TestCase {
	return []TestCase{
		newTestCase("3.3-A", "httpHeadResponseNoBody", MUST, fedoraSpec+"http-head",
			"The HEAD method must not include a message body in the response.",
			httpHeadResponseNoBody),
		newTestCase("3.3-B", "httpHeadResponseDigest", SHOULD, fedoraSpec+"http-head",
			"A HEAD request for an LDP-NR with a Want-Digest header should return a Digest header.",
			httpHeadResponseDigest),
		newTestCase("3.3-C", "httpHeadResponseHeadersSameAsHttpGet", SHOULD, fedoraSpec+"http-head",
			"A HEAD response should have the same headers as a GET response for the same resource.",
			httpHeadResponseHeadersSameAsHTTPGet),
	}
}

func httpHeadResponseNoBody(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	resp := c.send(t, "HEAD", r)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, ResponseBody().Should(m.Equal("")))
}

func httpHeadResponseDigest(t *ldtest.T, c *TestContext) {
	b := c.createBinary(t, c.ScratchURL)
	resp := c.send(t, "HEAD", b, harness.Header("Want-Digest", "sha"))
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, HasHeader("Digest"))
}

// Headers that legitimately differ between two responses.
var volatileHeaders = []string{"Date", "Content-Length", "Transfer-Encoding", "Connection", "Keep-Alive"} //nolint:gochecknoglobals

func httpHeadResponseHeadersSameAsHTTPGet(t *ldtest.T, c *TestContext) {
	r := c.createContainer(t, c.ScratchURL)
	get := c.send(t, "GET", r)
	head := c.send(t, "HEAD", r)
	m.In(t).Require(get, HasStatus(200))
	m.In(t).Require(head, HasStatus(200))

	for name := range get.Header {
		if containsFold(volatileHeaders, name) {
			continue
		}
		m.In(t).For("HEAD header "+name).Assert(head, HeaderValue(name).Should(m.Equal(get.Header.Get(name))))
	}
}
