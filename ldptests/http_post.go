package ldptests

import (
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	"github.com/google/uuid"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func httpPostTests() []TestCase {
	return []TestCase{
		newTestCase("3.5-A", "httpPost", MUST, fedoraSpec+"http-post",
			"Any LDPC must support POST for creating new resources.",
			httpPost),
		newTestCase("3.5-B", "postSlug", SHOULD, fedoraSpec+"http-post",
			"The Slug header should be used as the final path segment of the new resource when possible.",
			postSlug),
		newTestCase("3.5-C", "postNonRDFSource", MUST, fedoraSpec+"http-post",
			"Any LDPC must support creation of LDP-NRs, which must advertise a describedby link.",
			postNonRDFSource),
		newTestCase("3.5-D", "postDigestResponseHeaderVerification", MUST, fedoraSpec+"http-post-ldpnr",
			"A POST with a Digest header that does not match the content must be rejected with 409 Conflict.",
			postDigestResponseHeaderVerification),
		newTestCase("3.5-E", "postDigestResponseHeaderAuthentication", MUST, fedoraSpec+"http-post-ldpnr",
			"A POST with a Digest header that matches the content must succeed.",
			postDigestResponseHeaderAuthentication),
		newTestCase("3.5-F", "postDigestUnsupportedAlgorithm", SHOULD, fedoraSpec+"http-post-ldpnr",
			"A POST with a Digest header naming an unsupported algorithm should be rejected with 400 Bad Request.",
			postDigestUnsupportedAlgorithm),
	}
}

func httpPost(t *ldtest.T, c *TestContext) {
	resp := c.post(t, c.ScratchURL, withFixture(c.fixture(t, "container", nil)))
	m.In(t).Assert(resp, HasStatus(201))
	m.In(t).Assert(resp, HasHeader("Location"))
}

func postSlug(t *ldtest.T, c *TestContext) {
	slug := "slug-" + uuid.NewString()
	location := c.createContainer(t, c.ScratchURL, harness.Slug(slug))
	if !strings.HasSuffix(strings.TrimSuffix(location, "/"), "/"+slug) {
		t.Errorf("location %s does not end with the requested slug %s", location, slug)
	}
}

func postNonRDFSource(t *ldtest.T, c *TestContext) {
	b := c.createBinary(t, c.ScratchURL)
	resp := c.send(t, "HEAD", b)
	m.In(t).Require(resp, IsSuccessful())
	m.In(t).Assert(resp, HasType(turtle.LDP+"NonRDFSource"))
	m.In(t).Assert(resp, HasLinkRel("describedby"))
}

func binaryWithDigest(t *ldtest.T, c *TestContext, digest string) *harness.Response {
	f := c.fixture(t, "binary", nil)
	return c.post(t, c.ScratchURL,
		withFixture(f),
		harness.InteractionModel(turtle.LDP+"NonRDFSource"),
		harness.Header("Digest", digest))
}

func postDigestResponseHeaderVerification(t *ldtest.T, c *TestContext) {
	resp := binaryWithDigest(t, c, "sha=5ad3bd6e5eb8cf7bbdd0e2e3d3ae7b2e1a7bd0c5")
	m.In(t).Assert(resp, HasStatus(409))
}

func postDigestResponseHeaderAuthentication(t *ldtest.T, c *TestContext) {
	f := c.fixture(t, "binary", nil)
	resp := binaryWithDigest(t, c, helpers.DigestHeader("sha", f.Data))
	m.In(t).Assert(resp, HasStatus(201))
}

func postDigestUnsupportedAlgorithm(t *ldtest.T, c *TestContext) {
	resp := binaryWithDigest(t, c, "wrong=abc")
	m.In(t).Assert(resp, HasStatus(400))
}
