package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/opt"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sitesYAML = `
default:
  root-url: http://localhost:8080/rest
  root-controller-user:
    webid: http://example.org/fedoraAdmin
    name: fedoraAdmin
    password: fedoraAdmin
  permissionless-user:
    webid: http://example.org/testuser
    name: testuser
    password: null
  broker-url: tcp://localhost:61613
  topic-name: fedora
other:
  root-url: http://other:8080/fcrepo/rest
  root-controller-user:
    auth-header: Bearer xyz
  requirements: MUST,SHOULD
`

func validParams() TestParameters {
	return TestParameters{
		RootURL:        "http://localhost:8080/rest/",
		RootController: UserIdentity{WebID: "http://example.org/admin", Name: "admin", Password: opt.Some("pw")},
	}
}

func TestParseSites(t *testing.T) {
	p, err := ParseSites([]byte(sitesYAML), "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/rest", p.RootURL)
	assert.Equal(t, "fedoraAdmin", p.RootController.Name)
	assert.Equal(t, opt.Some("fedoraAdmin"), p.RootController.Password)
	assert.False(t, p.RootController.AuthHeader.IsDefined())
	assert.False(t, p.Permissionless.Password.IsDefined())
	assert.Equal(t, "fedora", p.Topic)

	p, err = ParseSites([]byte(sitesYAML), "other")
	require.NoError(t, err)
	assert.Equal(t, opt.Some("Bearer xyz"), p.RootController.AuthHeader)
	assert.Equal(t, "MUST,SHOULD", p.Requirements)

	_, err = ParseSites([]byte(sitesYAML), "missing")
	assert.Error(t, err)
	_, err = ParseSites([]byte("default: ["), "")
	assert.Error(t, err)
}

func TestLoadSiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(sitesYAML), 0o600))
	p, err := LoadSiteFile(path, "other")
	require.NoError(t, err)
	assert.Equal(t, "http://other:8080/fcrepo/rest", p.RootURL)

	_, err = LoadSiteFile(filepath.Join(t.TempDir(), "nope.yml"), "")
	assert.Error(t, err)
}

func TestMergeOverridesOnlySetFields(t *testing.T) {
	file, err := ParseSites([]byte(sitesYAML), "")
	require.NoError(t, err)
	merged := file.Merge(TestParameters{
		RootURL:        "http://override:8080/rest",
		RootController: UserIdentity{Password: opt.Some("secret")},
		Debug:          true,
	})
	assert.Equal(t, "http://override:8080/rest", merged.RootURL)
	assert.Equal(t, "fedoraAdmin", merged.RootController.Name)
	assert.Equal(t, opt.Some("secret"), merged.RootController.Password)
	assert.Equal(t, "fedora", merged.Topic)
	assert.True(t, merged.Debug)
}

func TestWithDefaults(t *testing.T) {
	p := TestParameters{RootURL: "http://localhost:8080/rest"}.WithDefaults()
	assert.Equal(t, "http://localhost:8080/rest/", p.RootURL)
	assert.Equal(t, DefaultOutputDir, p.OutputDir)
	assert.Equal(t, AllRequirements, p.Requirements)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validParams().Validate())

	p := validParams()
	p.RootURL = ""
	assert.ErrorIs(t, p.Validate(), ErrMissingParameter)

	p = validParams()
	p.RootURL = "localhost:8080"
	assert.ErrorIs(t, p.Validate(), ErrMalformedURI)

	p = validParams()
	p.RootController = UserIdentity{}
	assert.ErrorIs(t, p.Validate(), ErrMissingParameter)

	p = validParams()
	p.Permissionless.WebID = "not a uri"
	assert.ErrorIs(t, p.Validate(), ErrMalformedURI)

	p = validParams()
	p.BrokerURL = "tcp://localhost:61613"
	assert.ErrorIs(t, p.Validate(), ErrMissingParameter)
	p.Queue = "fedora"
	assert.NoError(t, p.Validate())

	p = validParams()
	p.Requirements = "MUST,SOMETIMES"
	assert.Error(t, p.Validate())
}

func TestRequirementLevels(t *testing.T) {
	levels, err := TestParameters{}.RequirementLevels()
	require.NoError(t, err)
	assert.Equal(t, testinfo.AllRequirementLevels, levels)

	levels, err = TestParameters{Requirements: "all"}.RequirementLevels()
	require.NoError(t, err)
	assert.Len(t, levels, 3)

	levels, err = TestParameters{Requirements: "must, may"}.RequirementLevels()
	require.NoError(t, err)
	assert.Equal(t, []testinfo.RequirementLevel{testinfo.MUST, testinfo.MAY}, levels)
}

func TestSuiteFile(t *testing.T) {
	def, err := LoadSuiteFile("")
	require.NoError(t, err)
	assert.True(t, def.IncludesClass("Container"))
	assert.True(t, def.IncludesTest("createLDPC", "3.1.1-A"))

	path := filepath.Join(t.TempDir(), "suite.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: containers\nclasses: [Container]\ntests: [3.1.1-A]\n"), 0o600))
	def, err = LoadSuiteFile(path)
	require.NoError(t, err)
	assert.Equal(t, "containers", def.Name)
	assert.True(t, def.IncludesClass("Container"))
	assert.False(t, def.IncludesClass("HttpPost"))
	assert.True(t, def.IncludesTest("createLDPC", "3.1.1-A"))
	assert.False(t, def.IncludesTest("ldpcContainmentTriples", "3.1.1-B"))
}
