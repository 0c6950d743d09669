package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEmbedding(t *testing.T) {
	_, err := dataFilesRoot.ReadFile("data-files/index.yaml")
	assert.NoError(t, err)

	files, err := dataFilesRoot.ReadDir("data-files/turtle")
	assert.NoError(t, err)
	assert.NotEqual(t, 0, len(files))
}

func TestLoadFixtureSet(t *testing.T) {
	s, err := LoadFixtureSet()
	require.NoError(t, err)
	assert.Contains(t, s.Names(), "container")
	assert.Contains(t, s.Names(), "sparql-insert")
	assert.Contains(t, s.Names(), "binary")
}

func TestEveryFixtureResolvesWithTheVariablesTestsPass(t *testing.T) {
	s, err := LoadFixtureSet()
	require.NoError(t, err)
	vars := map[string]string{
		"membershipResource": "http://localhost:8080/rest/a",
		"agent":              "http://example.org/admin",
		"resource":           "http://localhost:8080/rest/a",
	}
	for _, name := range s.Names() {
		variants, err := s.Variants(name, vars)
		require.NoError(t, err, name)
		for _, f := range variants {
			assert.Empty(t, Unresolved(f.Data), "%s %s", name, f.ParamsString())
			assert.NotEmpty(t, f.ContentType, name)
		}
	}
}

func TestGetSubstitutesConstantsAndVariables(t *testing.T) {
	s, err := LoadFixtureSet()
	require.NoError(t, err)

	f := s.MustGet("direct-container", map[string]string{"membershipResource": "http://localhost:8080/rest/m"})
	assert.Equal(t, "text/turtle", f.ContentType)
	assert.Contains(t, f.String(), "ldp:membershipResource <http://localhost:8080/rest/m>")
	assert.Contains(t, f.String(), "ldp:hasMemberRelation <http://www.w3.org/ns/ldp#member>")

	f = s.MustGet("container", map[string]string{"title": "overridden"})
	assert.True(t, strings.Contains(f.String(), `"Container class Container"`), "constants win over variables")

	_, err = s.Get("nope", nil)
	assert.Error(t, err)
	assert.Panics(t, func() { s.MustGet("nope", nil) })
}

func TestParameterizedFixture(t *testing.T) {
	s, err := LoadFixtureSet()
	require.NoError(t, err)
	variants, err := s.Variants("resource", nil)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, "(title=Put class Container)", variants[0].ParamsString())
	assert.Contains(t, variants[1].String(), "Patch class Container")
}

func TestUnresolved(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Unresolved([]byte("x ${a} y ${b} z")))
	assert.Nil(t, Unresolved([]byte("<> a <#thing> .")))
}
