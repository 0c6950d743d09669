package ldptests

import (
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

const externalContentRel = "http://fedora.info/definitions/fcrepo#ExternalContent"

func externalBinaryContentTests() []TestCase {
	return []TestCase{
		newTestCase("3.9-A", "externalContentHandling", MUST, fedoraSpec+"external-content",
			"A server supporting external content must honor a Link rel=\"ExternalContent\" with a "+
				"recognised handling value.",
			externalContentHandling),
		newTestCase("3.9-B", "externalContentUnsupportedHandling", MUST, fedoraSpec+"external-content",
			"A request with an external content handling value the server does not support must be "+
				"rejected with 400 Bad Request.",
			externalContentUnsupportedHandling),
	}
}

func externalContentLink(url, handling, contentType string) harness.RequestOption {
	return harness.Header("Link",
		`<`+url+`>; rel="`+externalContentRel+`"; handling="`+handling+`"; type="`+contentType+`"`)
}

// externalSource creates a binary to act as external content and returns the location the
// server reported for it. The test is skipped if that location is not an absolute http URL,
// since the server could not fetch it.
func (c *TestContext) externalSource(t *ldtest.T) string {
	t.Helper()
	f := c.fixture(t, "binary", nil)
	resp := c.post(t, c.ScratchURL, withFixture(f), harness.InteractionModel(turtle.LDP+"NonRDFSource"))
	m.In(t).Require(resp, HasStatus(201))
	location := resp.RawLocation()
	if !strings.HasPrefix(location, "http") {
		t.SkipWithReason("server returned a relative location " + location + " that cannot serve as external content")
	}
	return location
}

func externalContentHandling(t *ldtest.T, c *TestContext) {
	source := c.externalSource(t)
	f := c.fixture(t, "binary", nil)

	b := c.create(t, c.ScratchURL, externalContentLink(source, "proxy", f.ContentType))
	resp := c.send(t, "GET", b)
	m.In(t).Require(resp, HasStatus(200, 307))
	if resp.StatusCode == 200 {
		m.In(t).Assert(resp, ResponseBody().Should(m.Equal(f.String())))
	}
}

func externalContentUnsupportedHandling(t *ldtest.T, c *TestContext) {
	source := c.externalSource(t)
	resp := c.post(t, c.ScratchURL, externalContentLink(source, "unsupported", "text/plain"))
	m.In(t).Assert(resp, HasStatus(400))
}
