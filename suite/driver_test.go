package suite

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/auth"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/config"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/opt"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/mockldp"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/report"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"

	"github.com/gofrs/flock"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rootAuthorization = "Basic " + base64.StdEncoding.EncodeToString([]byte("root:secret")) //nolint:gochecknoglobals

func quietConsole() Option {
	return WithConsoleLogger(ldtest.PlainTestLogger{Logger: framework.NullLogger()})
}

func paramsFor(rootURL, outputDir string) config.TestParameters {
	return config.TestParameters{
		RootURL: rootURL,
		RootController: config.UserIdentity{
			WebID:    "http://example.org/agents/root",
			Name:     "root",
			Password: opt.Some("secret"),
		},
		OutputDir: outputDir,
	}
}

type failingEmitter struct{}

func (failingEmitter) Emit([]report.ResultRow, report.RunInfo) error {
	return errors.New("disk full")
}

func withMockRepository(t *testing.T, action func(repo *mockldp.Repository, rootURL string)) {
	withConfiguredRepository(t, mockldp.Config{}, action)
}

func withConfiguredRepository(t *testing.T, config mockldp.Config, action func(repo *mockldp.Repository, rootURL string)) {
	config.AdminAuthorization = rootAuthorization
	repo := mockldp.NewRepository(config, nil)
	httphelpers.WithServer(repo, func(server *httptest.Server) {
		action(repo, server.URL+mockldp.RootPath+"/")
	})
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "INIT", PhaseInit.String())
	assert.Equal(t, "SETUP", PhaseSetup.String())
	assert.Equal(t, "RUNNING", PhaseRunning.String())
	assert.Equal(t, "TEARDOWN", PhaseTeardown.String())
	assert.Equal(t, "DONE", PhaseDone.String())
	assert.Equal(t, "ERROR", PhaseError.String())
}

func TestConfigureOnlyOnce(t *testing.T) {
	d, err := NewDriver()
	require.NoError(t, err)
	params := paramsFor("http://localhost:8080/rest", t.TempDir())
	require.NoError(t, d.Configure(params))
	assert.ErrorIs(t, d.Configure(params), ErrAlreadyConfigured)
}

func TestConfigureRejectsInvalidParameters(t *testing.T) {
	d, err := NewDriver()
	require.NoError(t, err)
	assert.ErrorIs(t, d.Configure(paramsFor("", t.TempDir())), config.ErrMissingParameter)

	params := paramsFor("http://localhost:8080/rest", t.TempDir())
	params.RootController.WebID = "not a uri"
	assert.ErrorIs(t, d.Configure(params), config.ErrMalformedURI)

	// a failed Configure leaves the driver unconfigured
	require.NoError(t, d.Configure(paramsFor("http://localhost:8080/rest", t.TempDir())))
}

func TestConfigureAmbiguousAuthenticator(t *testing.T) {
	r := auth.NewRegistry()
	r.Register("one", auth.BasicAuthenticator{})
	r.Register("two", auth.BearerAuthenticator{Token: "x"})
	d, err := NewDriver(WithAuthenticators(r))
	require.NoError(t, err)
	assert.ErrorIs(t, d.Configure(paramsFor("http://localhost:8080/rest", t.TempDir())), auth.ErrAmbiguousAuthenticator)
}

func TestRunBeforeConfigure(t *testing.T) {
	d, err := NewDriver()
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRunAgainstMockRepository(t *testing.T) {
	withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
		outputDir := t.TempDir()
		params := paramsFor(rootURL, outputDir)
		params.Requirements = "MUST"
		params.Run = []string{"^Container$"}
		params.JUnitFile = filepath.Join(outputDir, "junit.xml")

		d, err := NewDriver(quietConsole())
		require.NoError(t, err)
		require.NoError(t, d.Configure(params))
		outcome, err := d.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []Phase{PhaseInit, PhaseSetup, PhaseRunning, PhaseTeardown, PhaseDone}, d.History())
		assert.Equal(t, PhaseDone, d.Phase())
		assert.True(t, outcome.OK())
		assert.Equal(t, report.Counts{Passed: 5, Skipped: 1}, outcome.Counts)
		for _, row := range outcome.Rows {
			assert.Equal(t, "Container", row.TestClass)
			if row.Title == "ldpcConstrainedByOnConflict" {
				assert.Equal(t, report.StatusSkip, row.Status, row.DisplayLabel)
				continue
			}
			assert.Equal(t, report.StatusPass, row.Status, row.DisplayLabel)
		}
		assert.Equal(t, "3.1.1-A createLDPC", outcome.Rows[0].DisplayLabel)

		assert.Contains(t, d.ScratchContainerURL(), rootURL+scratchSlugPrefix)
		assert.Empty(t, repo.Paths(), "scratch container and its contents were deleted")

		for _, name := range []string{LogFileName, report.HTMLFileName, report.EARLFileName, report.JSONFileName, "junit.xml"} {
			_, err := os.Stat(filepath.Join(outputDir, name))
			assert.NoError(t, err, name)
		}
		log, err := os.ReadFile(filepath.Join(outputDir, LogFileName))
		require.NoError(t, err)
		assert.Contains(t, string(log), "Created scratch container")
	})
}

func TestExecutionLogIsResetForEachRun(t *testing.T) {
	withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
		outputDir := t.TempDir()
		logPath := filepath.Join(outputDir, LogFileName)
		require.NoError(t, os.WriteFile(logPath, []byte("previous run\n"), 0o600))

		params := paramsFor(rootURL, outputDir)
		params.Run = []string{"^HttpOptions$"}
		d, err := NewDriver(quietConsole(), WithEmitters())
		require.NoError(t, err)
		require.NoError(t, d.Configure(params))
		_, err = d.Run(context.Background())
		require.NoError(t, err)

		log, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.NotContains(t, string(log), "previous run")
	})
}

func TestSuiteFileRestrictsTests(t *testing.T) {
	withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
		outputDir := t.TempDir()
		suitePath := filepath.Join(outputDir, "suite.yaml")
		require.NoError(t, os.WriteFile(suitePath, []byte("name: options\nclasses: [HttpOptions]\ntests: [\"3.4-A\"]\n"), 0o600))

		params := paramsFor(rootURL, outputDir)
		params.SuiteFile = suitePath
		d, err := NewDriver(quietConsole(), WithEmitters())
		require.NoError(t, err)
		require.NoError(t, d.Configure(params))
		outcome, err := d.Run(context.Background())
		require.NoError(t, err)

		require.Len(t, outcome.Rows, 1)
		assert.Equal(t, "3.4-A httpOptionsSupport", outcome.Rows[0].DisplayLabel)
	})
}

func runToCompletion(t *testing.T, params config.TestParameters) Outcome {
	t.Helper()
	d, err := NewDriver(quietConsole(), WithEmitters())
	require.NoError(t, err)
	require.NoError(t, d.Configure(params))
	outcome, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, d.Phase())
	return outcome
}

func TestRequirementLevelExcludingWholeClasses(t *testing.T) {
	for _, level := range []testinfo.RequirementLevel{testinfo.SHOULD, testinfo.MAY} {
		t.Run(level.String(), func(t *testing.T) {
			withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
				params := paramsFor(rootURL, t.TempDir())
				params.Requirements = level.String()
				outcome := runToCompletion(t, params)

				require.NotEmpty(t, outcome.Rows)
				for _, row := range outcome.Rows {
					assert.Equal(t, level, row.Level, row.DisplayLabel)
				}
				assert.Equal(t, len(outcome.Rows), outcome.Counts.Total())
			})
		})
	}
}

func TestSkipPatternEmptyingAClass(t *testing.T) {
	withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
		params := paramsFor(rootURL, t.TempDir())
		params.Run = []string{"^(Container|HttpOptions)$"}
		params.Skip = []string{"^Container$/."}
		outcome := runToCompletion(t, params)

		require.NotEmpty(t, outcome.Rows)
		for _, row := range outcome.Rows {
			assert.Equal(t, "HttpOptions", row.TestClass)
		}
	})
}

func TestSuiteFileEmptyingAClass(t *testing.T) {
	withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
		outputDir := t.TempDir()
		suitePath := filepath.Join(outputDir, "suite.yaml")
		require.NoError(t, os.WriteFile(suitePath,
			[]byte("name: mixed\nclasses: [HttpOptions, HttpHead]\ntests: [\"3.4-A\"]\n"), 0o600))

		params := paramsFor(rootURL, outputDir)
		params.SuiteFile = suitePath
		outcome := runToCompletion(t, params)

		require.Len(t, outcome.Rows, 1)
		assert.Equal(t, "3.4-A httpOptionsSupport", outcome.Rows[0].DisplayLabel)
	})
}

func TestSkipReasonBecomesRowDetail(t *testing.T) {
	withConfiguredRepository(t, mockldp.Config{RelativeLocations: true}, func(repo *mockldp.Repository, rootURL string) {
		params := paramsFor(rootURL, t.TempDir())
		params.Run = []string{"^ExternalBinaryContent$/^externalContentHandling$"}
		outcome := runToCompletion(t, params)

		require.Len(t, outcome.Rows, 1)
		row := outcome.Rows[0]
		assert.Equal(t, "externalContentHandling", row.Title)
		assert.Equal(t, report.StatusSkip, row.Status)
		require.Len(t, outcome.Results.Skipped, 1)
		assert.Equal(t, outcome.Results.Skipped[0].SkipReason, row.Detail)
		assert.True(t, strings.HasPrefix(row.Detail, "server returned a relative location /rest/"), row.Detail)
		assert.True(t, strings.HasSuffix(row.Detail, " that cannot serve as external content"), row.Detail)
	})
}

func TestScratchContainerFailureIsAnError(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		d, err := NewDriver(quietConsole())
		require.NoError(t, err)
		require.NoError(t, d.Configure(paramsFor(server.URL+"/rest/", t.TempDir())))
		_, err = d.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scratch container")
		assert.Equal(t, []Phase{PhaseInit, PhaseSetup, PhaseError}, d.History())
	})
}

func TestEmitterFailureIsAnError(t *testing.T) {
	withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
		params := paramsFor(rootURL, t.TempDir())
		params.Run = []string{"^HttpOptions$"}
		d, err := NewDriver(quietConsole(), WithEmitters(failingEmitter{}))
		require.NoError(t, err)
		require.NoError(t, d.Configure(params))
		outcome, err := d.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.NotEmpty(t, outcome.Rows)
		assert.Equal(t, []Phase{PhaseInit, PhaseSetup, PhaseRunning, PhaseTeardown, PhaseError}, d.History())
		assert.Empty(t, repo.Paths(), "cleanup still ran")
	})
}

func TestLockedOutputDirectory(t *testing.T) {
	withMockRepository(t, func(repo *mockldp.Repository, rootURL string) {
		outputDir := t.TempDir()
		other := flock.New(filepath.Join(outputDir, lockFileName))
		locked, err := other.TryLock()
		require.NoError(t, err)
		require.True(t, locked)
		defer other.Unlock() //nolint:errcheck

		d, err := NewDriver(quietConsole())
		require.NoError(t, err)
		require.NoError(t, d.Configure(paramsFor(rootURL, outputDir)))
		_, err = d.Run(context.Background())
		assert.ErrorIs(t, err, ErrOutputDirLocked)
		assert.Empty(t, repo.Requests())
	})
}
