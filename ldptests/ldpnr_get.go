package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func ldpnrGetTests() []TestCase {
	return []TestCase{
		newTestCase("3.2.2-A", "ldpnrGetContent", MUST, fedoraSpec+"http-get-ldpnr",
			"GET on an LDP-NR must return the stored bytes.",
			ldpnrGetContent),
		newTestCase("3.2.2-B", "respondWantDigest", MUST, fedoraSpec+"http-get-ldpnr",
			"GET on an LDP-NR with a Want-Digest header must return a matching Digest header.",
			respondWantDigest),
		newTestCase("3.2.2-C", "respondWantDigestTwoSupported", SHOULD, fedoraSpec+"http-get-ldpnr",
			"With several supported algorithms in Want-Digest, the Digest header should carry at least one "+
				"correct value.",
			respondWantDigestTwoSupported),
		newTestCase("3.2.2-D", "ldpnrDescribedBy", MUST, fedoraSpec+"http-get-ldpnr",
			"An LDP-NR must link to its description with rel=\"describedby\", and the description must be "+
				"retrievable.",
			ldpnrDescribedBy),
	}
}

func ldpnrGetContent(t *ldtest.T, c *TestContext) {
	f := c.fixture(t, "binary", nil)
	b := c.createBinary(t, c.ScratchURL)
	resp := c.send(t, "GET", b)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Assert(resp, ResponseBody().Should(m.Equal(f.String())))
}

// checkDigests requires a Digest header and fails for every listed algorithm whose value is
// wrong. It returns how many algorithms were verified.
func checkDigests(t *ldtest.T, resp *harness.Response, content []byte) int {
	t.Helper()
	m.In(t).Require(resp, HasHeader("Digest"))
	verified := 0
	for alg, value := range helpers.ParseDigestHeader(resp.Header.Get("Digest")) {
		expected, err := helpers.Digest(alg, content)
		if err != nil {
			t.Debug("ignoring digest with unknown algorithm %s", alg)
			continue
		}
		if value != expected {
			t.Errorf("%s digest was %s, expected %s", alg, value, expected)
			continue
		}
		verified++
	}
	return verified
}

func respondWantDigest(t *ldtest.T, c *TestContext) {
	f := c.fixture(t, "binary", nil)
	b := c.createBinary(t, c.ScratchURL)
	resp := c.send(t, "GET", b, harness.Header("Want-Digest", "sha"))
	m.In(t).Require(resp, HasStatus(200))
	if checkDigests(t, resp, f.Data) == 0 {
		t.Errorf("no sha digest in %q", resp.Header.Get("Digest"))
	}
}

func respondWantDigestTwoSupported(t *ldtest.T, c *TestContext) {
	f := c.fixture(t, "binary", nil)
	b := c.createBinary(t, c.ScratchURL)
	resp := c.send(t, "GET", b, harness.Header("Want-Digest", "sha, md5;q=0.3"))
	m.In(t).Require(resp, HasStatus(200))
	if checkDigests(t, resp, f.Data) == 0 {
		t.Errorf("no supported digest in %q", resp.Header.Get("Digest"))
	}
}

func ldpnrDescribedBy(t *ldtest.T, c *TestContext) {
	b := c.createBinary(t, c.ScratchURL)
	resp := c.send(t, "GET", b)
	m.In(t).Require(resp, HasStatus(200))
	m.In(t).Require(resp, HasLinkRel("describedby"))

	description := resp.LinksByRel("describedby")[0]
	m.In(t).For("GET "+description).Assert(c.send(t, "GET", description), HasStatus(200))
}
