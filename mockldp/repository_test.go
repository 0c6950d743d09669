package mockldp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const containerBody = `@prefix dcterms: <http://purl.org/dc/terms/> .
<> dcterms:title "a container" .`

func withRepository(t *testing.T, config Config, action func(repo *Repository, h *harness.TestHarness, root string)) {
	repo := NewRepository(config, nil)
	httphelpers.WithServer(repo, func(server *httptest.Server) {
		action(repo, harness.NewTestHarness(server.URL+RootPath+"/", nil, nil), server.URL+RootPath+"/")
	})
}

func create(t *testing.T, h *harness.TestHarness, parent string, options ...harness.RequestOption) *harness.Response {
	resp, err := h.Send("POST", parent, options...)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode, resp.BodyString())
	return resp
}

func TestCreateAndReadContainer(t *testing.T) {
	withRepository(t, Config{}, func(repo *Repository, h *harness.TestHarness, root string) {
		parent := create(t, h, root, harness.Turtle(containerBody), harness.Slug("parent"),
			harness.InteractionModel(ldpNS+"BasicContainer")).Location()
		assert.Equal(t, root+"parent", parent)
		child := create(t, h, parent, harness.Turtle(containerBody)).Location()

		resp, err := h.Send("GET", parent)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.True(t, resp.HasType(ldpNS+"BasicContainer"))
		assert.True(t, resp.Allows("POST"))
		assert.NotEmpty(t, resp.LinksByRel("timemap"))
		assert.NotEmpty(t, resp.LinksByRel("acl"))

		g, err := turtle.Parse(resp.BodyString(), parent)
		require.NoError(t, err)
		assert.True(t, g.Contains(parent, turtle.LDP+"contains", child))
		assert.True(t, g.Contains(parent, turtle.DCTerms+"title", "a container"))
		assert.True(t, repo.Exists("/rest/parent"))

		resp, err = h.Send("GET", parent, harness.Header("Prefer",
			`return=representation; omit="http://www.w3.org/ns/ldp#PreferContainment"`))
		require.NoError(t, err)
		assert.Equal(t, "return=representation", resp.Header.Get("Preference-Applied"))
		assert.NotContains(t, resp.BodyString(), "contains")
	})
}

func TestServerManagedTriplesAreRejectedWithConstraints(t *testing.T) {
	withRepository(t, Config{}, func(_ *Repository, h *harness.TestHarness, root string) {
		resp, err := h.Send("POST", root, harness.Turtle("<> <http://www.w3.org/ns/ldp#contains> <http://x/> ."))
		require.NoError(t, err)
		assert.Equal(t, 409, resp.StatusCode)
		assert.NotEmpty(t, resp.LinksByRel(constrainedByRel))
	})
	withRepository(t, Config{OmitConstrainedBy: true}, func(_ *Repository, h *harness.TestHarness, root string) {
		resp, err := h.Send("POST", root, harness.Turtle("<> <http://www.w3.org/ns/ldp#contains> <http://x/> ."))
		require.NoError(t, err)
		assert.Equal(t, 409, resp.StatusCode)
		assert.Empty(t, resp.LinksByRel(constrainedByRel))
	})
}

func TestMaxDepth(t *testing.T) {
	withRepository(t, Config{MaxDepth: 1}, func(_ *Repository, h *harness.TestHarness, root string) {
		c := create(t, h, root, harness.Turtle(containerBody)).Location()
		resp, err := h.Send("POST", c, harness.Turtle(containerBody))
		require.NoError(t, err)
		assert.Equal(t, 409, resp.StatusCode)
	})
}

func TestBinaryDigests(t *testing.T) {
	withRepository(t, Config{}, func(_ *Repository, h *harness.TestHarness, root string) {
		data := []byte("TestString.")
		resp, err := h.Send("POST", root, harness.Body("text/plain", data),
			harness.Header("Digest", "sha=bogus"))
		require.NoError(t, err)
		assert.Equal(t, 409, resp.StatusCode)

		resp, err = h.Send("POST", root, harness.Body("text/plain", data),
			harness.Header("Digest", "crc32=abc"))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)

		binary := create(t, h, root, harness.Body("text/plain", data),
			harness.Header("Digest", helpers.DigestHeader("sha", data))).Location()

		resp, err = h.Send("GET", binary, harness.Header("Want-Digest", "sha, md5"))
		require.NoError(t, err)
		assert.Equal(t, "TestString.", resp.BodyString())
		assert.True(t, resp.HasType(ldpNS+"NonRDFSource"))
		assert.NotEmpty(t, resp.LinksByRel("describedby"))
		assert.Equal(t, helpers.DigestHeader("md5", data)+", "+helpers.DigestHeader("sha", data), resp.Header.Get("Digest"))
	})
}

func TestPatch(t *testing.T) {
	withRepository(t, Config{}, func(_ *Repository, h *harness.TestHarness, root string) {
		c := create(t, h, root, harness.Turtle(containerBody)).Location()

		resp, err := h.Send("PATCH", c, harness.SparqlUpdate(
			"PREFIX dcterms: <http://purl.org/dc/terms/>\nINSERT { <> dcterms:title \"patched\" . } WHERE { }"))
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)

		resp, err = h.Send("GET", c)
		require.NoError(t, err)
		g, err := turtle.Parse(resp.BodyString(), c)
		require.NoError(t, err)
		assert.True(t, g.Contains(c, turtle.DCTerms+"title", "patched"))

		resp, err = h.Send("PATCH", c, harness.SparqlUpdate("INSERT { <> <http://x/y> \"z\" . WHERE { }"))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)

		resp, err = h.Send("PATCH", c, harness.Body("text/plain", []byte("x")))
		require.NoError(t, err)
		assert.Equal(t, 415, resp.StatusCode)
	})
}

func TestDeleteLeavesTombstone(t *testing.T) {
	withRepository(t, Config{}, func(repo *Repository, h *harness.TestHarness, root string) {
		parent := create(t, h, root, harness.Turtle(containerBody), harness.Slug("p")).Location()
		create(t, h, parent, harness.Turtle(containerBody), harness.Slug("c"))

		resp, err := h.Send("DELETE", parent)
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
		assert.False(t, repo.Exists("/rest/p/c"))

		resp, err = h.Send("HEAD", parent)
		require.NoError(t, err)
		assert.Equal(t, 410, resp.StatusCode)
		tombstones := resp.LinksByRel("hasTombstone")
		require.Len(t, tombstones, 1)

		resp, err = h.Send("DELETE", tombstones[0])
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)

		resp, err = h.Send("GET", parent)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Empty(t, repo.Paths())
	})
}

func TestShallowDeleteLeavesChildren(t *testing.T) {
	withRepository(t, Config{ShallowDelete: true, NoTombstones: true}, func(repo *Repository, h *harness.TestHarness, root string) {
		parent := create(t, h, root, harness.Turtle(containerBody), harness.Slug("p")).Location()
		create(t, h, parent, harness.Turtle(containerBody), harness.Slug("c"))

		resp, err := h.Send("DELETE", parent)
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
		assert.True(t, repo.Exists("/rest/p/c"))
	})
}

func TestDisableDelete(t *testing.T) {
	withRepository(t, Config{DisableDelete: true}, func(_ *Repository, h *harness.TestHarness, root string) {
		c := create(t, h, root, harness.Turtle(containerBody)).Location()
		resp, err := h.Send("OPTIONS", c)
		require.NoError(t, err)
		assert.False(t, resp.Allows("DELETE"))

		resp, err = h.Send("DELETE", c)
		require.NoError(t, err)
		assert.Equal(t, 405, resp.StatusCode)
	})
}

func TestRelativeLocations(t *testing.T) {
	withRepository(t, Config{RelativeLocations: true}, func(_ *Repository, h *harness.TestHarness, root string) {
		resp := create(t, h, root, harness.Turtle(containerBody), harness.Slug("rel"))
		assert.Equal(t, "/rest/rel", resp.RawLocation())
		assert.Equal(t, root+"rel", resp.Location())
	})
}

func TestACLRestrictsOtherUsers(t *testing.T) {
	config := Config{AdminAuthorization: "admin"}
	withRepository(t, config, func(_ *Repository, h *harness.TestHarness, root string) {
		h.SetCredentials(harness.DefaultUser, headerCredentials("admin"))
		h.SetCredentials("other", headerCredentials("other"))
		c := create(t, h, root, harness.Turtle(containerBody)).Location()
		acl := c + aclSuffix

		resp, err := h.Send("PUT", acl, harness.Turtle(
			"@prefix acl: <http://www.w3.org/ns/auth/acl#> .\n<#owner> acl:agent <http://example.org/admin> ."))
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)

		resp, err = h.Send("GET", c, harness.AsUser("other"))
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)

		resp, err = h.Send("GET", c)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestVersions(t *testing.T) {
	withRepository(t, Config{}, func(_ *Repository, h *harness.TestHarness, root string) {
		c := create(t, h, root, harness.Turtle(containerBody)).Location()
		timemap := c + versionsSuffix

		memento := create(t, h, timemap).Location()
		resp, err := h.Send("HEAD", memento)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.True(t, resp.HasType(mementoNS+"Memento"))

		resp, err = h.Send("GET", timemap)
		require.NoError(t, err)
		assert.True(t, resp.HasType(mementoNS+"TimeMap"))
		assert.Contains(t, resp.BodyString(), memento)
	})
}

func TestExternalContent(t *testing.T) {
	withRepository(t, Config{}, func(_ *Repository, h *harness.TestHarness, root string) {
		binary := create(t, h, root, harness.Body("text/plain", []byte("TestString."))).Location()

		resp, err := h.Send("POST", root, harness.Header("Link",
			"<"+binary+">; rel=\""+externalContentRel+"\"; handling=\"bogus\"; type=\"text/plain\""))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)

		proxied := create(t, h, root, harness.Header("Link",
			"<"+binary+">; rel=\""+externalContentRel+"\"; handling=\"proxy\"; type=\"text/plain\"")).Location()
		resp, err = h.Send("GET", proxied)
		require.NoError(t, err)
		assert.Equal(t, "TestString.", resp.BodyString())
	})
}

type headerCredentials string

func (c headerCredentials) AddAuthInfo(req *http.Request) *http.Request {
	req.Header.Set("Authorization", string(c))
	return req
}
