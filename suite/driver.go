package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/auth"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/cleanup"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/config"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/data"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/ldptests"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/messaging"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/report"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	// ReportTitle is the title of every report.
	ReportTitle = "Fedora API Test Suite"

	LogFileName  = "execution.log"
	lockFileName = ".lock"

	scratchSlugPrefix = "fcrepo-test-suite-"
)

var (
	ErrAlreadyConfigured = errors.New("test suite driver is already configured")
	ErrNotConfigured     = errors.New("test suite driver is not configured")
	ErrOutputDirLocked   = errors.New("output directory is in use by another run")
)

// Driver runs the whole suite once: it creates a scratch container, runs every selected test
// beneath it, removes what the tests created, and writes the reports.
//
// Its phases are INIT, SETUP, RUNNING, TEARDOWN and DONE, in that order. Any failure that makes
// the run or its reports meaningless moves it to ERROR instead. Cleanup is attempted whichever
// way the run ends, once the scratch container exists.
type Driver struct {
	authenticators *auth.Registry
	client         *http.Client
	consoleLogger  ldtest.TestLogger
	emitters       []report.Emitter
	eventTimeout   time.Duration

	params     config.TestParameters
	configured bool
	levels     []testinfo.RequirementLevel
	suiteDef   config.SuiteDefinition
	filters    ldtest.RegexFilters
	registry   *testinfo.Registry
	cases      map[string]ldptests.TestCase
	fixtures   *data.FixtureSet
	tokens     map[string]auth.AuthenticationToken

	phase   Phase
	history []Phase

	lock     *flock.Flock
	logFile  *os.File
	logger   framework.Logger
	harness  *harness.TestHarness
	tracker  *cleanup.Tracker
	listener *messaging.Listener
	scratch  string
	results  ldtest.Results
	rows     []report.ResultRow
}

// Outcome is what a completed run produced.
type Outcome struct {
	Results ldtest.Results
	Rows    []report.ResultRow
	Counts  report.Counts
}

// OK is true if no test failed.
func (o Outcome) OK() bool {
	return o.Counts.Failed == 0
}

func NewDriver(options ...Option) (*Driver, error) {
	d := &Driver{
		phase:   PhaseInit,
		history: []Phase{PhaseInit},
	}
	if err := helpers.ApplyOptions(d, options...); err != nil {
		return nil, err
	}
	if d.authenticators == nil {
		d.authenticators = auth.NewRegistry()
	}
	return d, nil
}

// Phase returns the current phase.
func (d *Driver) Phase() Phase {
	return d.phase
}

// History returns every phase the driver has been in, in order.
func (d *Driver) History() []Phase {
	return append([]Phase(nil), d.history...)
}

// ScratchContainerURL is the container the tests ran in, once SETUP has created it.
func (d *Driver) ScratchContainerURL() string {
	return d.scratch
}

func (d *Driver) enter(p Phase) {
	d.phase = p
	d.history = append(d.history, p)
	if d.logger != nil {
		d.logger.Printf("Entering phase %s", p)
	}
}

// Configure validates the parameters and prepares everything that does not touch the
// repository: the authenticator and user tokens, the test catalog and the filters. It may only
// be called once.
func (d *Driver) Configure(params config.TestParameters) error {
	if d.configured {
		return ErrAlreadyConfigured
	}
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return err
	}
	levels, err := params.RequirementLevels()
	if err != nil {
		return err
	}
	suiteDef, err := config.LoadSuiteFile(params.SuiteFile)
	if err != nil {
		return err
	}
	var filters ldtest.RegexFilters
	for _, p := range params.Run {
		if err := filters.MustMatch.Set(p); err != nil {
			return fmt.Errorf("invalid run pattern %q: %w", p, err)
		}
	}
	for _, p := range params.Skip {
		if err := filters.MustNotMatch.Set(p); err != nil {
			return fmt.Errorf("invalid skip pattern %q: %w", p, err)
		}
	}

	authenticator, err := d.authenticators.Resolve(params.AuthClass)
	if err != nil {
		return err
	}
	tokens := make(map[string]auth.AuthenticationToken)
	if tokens[harness.DefaultUser], err = authenticator.CreateAuthToken(params.RootController.AuthUser()); err != nil {
		return fmt.Errorf("root controller credentials: %w", err)
	}
	if params.Permissionless.IsConfigured() {
		if tokens[ldptests.PermissionlessUser], err = authenticator.CreateAuthToken(params.Permissionless.AuthUser()); err != nil {
			return fmt.Errorf("permissionless user credentials: %w", err)
		}
	}

	registry := testinfo.NewRegistry()
	cases, err := ldptests.Catalog(registry)
	if err != nil {
		return err
	}
	fixtures, err := data.LoadFixtureSet()
	if err != nil {
		return err
	}

	d.params = params
	d.levels = levels
	d.suiteDef = suiteDef
	d.filters = filters
	d.registry = registry
	d.cases = cases
	d.fixtures = fixtures
	d.tokens = tokens
	d.configured = true
	return nil
}

// Run performs SETUP, RUNNING and TEARDOWN. The returned error is non-nil exactly when the driver
// ends in PhaseError; test failures are not errors, they are reported in the Outcome.
func (d *Driver) Run(ctx context.Context) (Outcome, error) {
	if !d.configured {
		return Outcome{}, ErrNotConfigured
	}
	if d.phase != PhaseInit {
		return Outcome{}, fmt.Errorf("driver already ran and is in phase %s", d.phase)
	}
	defer d.release()
	started := time.Now()

	d.enter(PhaseSetup)
	if err := d.setup(ctx); err != nil {
		d.enter(PhaseError)
		if d.logger != nil {
			d.logger.Printf("Setup failed: %s", err)
		}
		if d.tracker != nil {
			d.tracker.Cleanup(ctx)
		}
		return Outcome{}, err
	}

	runErr := d.runTests()

	d.enter(PhaseTeardown)
	teardownErr := d.teardown(ctx, started)
	outcome := Outcome{Results: d.results, Rows: d.rows, Counts: report.Summarize(d.rows)}
	if err := errors.Join(runErr, teardownErr); err != nil {
		d.enter(PhaseError)
		d.logger.Printf("Run failed: %s", err)
		return outcome, err
	}
	d.enter(PhaseDone)
	return outcome, nil
}

func (d *Driver) setup(ctx context.Context) error {
	outputDir := d.params.OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	lock := flock.New(filepath.Join(outputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking output directory: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrOutputDirLocked, outputDir)
	}
	d.lock = lock

	logFile, err := os.Create(filepath.Join(outputDir, LogFileName))
	if err != nil {
		return fmt.Errorf("opening execution log: %w", err)
	}
	d.logFile = logFile
	fileLogger := framework.NewWriterLogger(logFile)
	if d.params.DebugAll {
		d.logger = framework.MultiLogger(fileLogger, framework.NewWriterLogger(os.Stdout))
	} else {
		d.logger = fileLogger
	}
	d.logger.Printf("Testing %s", d.params.RootURL)
	d.logger.Printf("Entering phase %s", PhaseSetup)

	d.harness = harness.NewTestHarness(d.params.RootURL, d.client, d.logger)
	for user, token := range d.tokens {
		d.harness.SetCredentials(user, token)
	}
	d.tracker = cleanup.NewTracker(d.harness, framework.LoggerWithPrefix(d.logger, "[cleanup] "))

	container, err := d.fixtures.Get("container", nil)
	if err != nil {
		return err
	}
	resp, err := d.harness.Send("POST", d.params.RootURL,
		harness.Body(container.ContentType, container.Data),
		harness.InteractionModel(turtle.LDP+"BasicContainer"),
		harness.Slug(scratchSlugPrefix+uuid.NewString()),
		harness.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("creating scratch container: %w", err)
	}
	if resp.StatusCode != http.StatusCreated || resp.Location() == "" {
		return fmt.Errorf("creating scratch container: POST %s returned status %d", d.params.RootURL, resp.StatusCode)
	}
	d.scratch = resp.Location()
	d.tracker.SetScratchContainerURL(d.scratch)
	d.logger.Printf("Created scratch container %s", d.scratch)

	if d.params.BrokerURL != "" {
		destination := messaging.Destination(d.params.Queue, d.params.Topic)
		listener, err := messaging.Dial(d.params.BrokerURL, destination, framework.LoggerWithPrefix(d.logger, "[broker] "))
		if err != nil {
			d.logger.Printf("Notification tests will be skipped: %s", err)
		} else {
			d.listener = listener
		}
	}
	return nil
}

func (d *Driver) capabilities() framework.Capabilities {
	caps := framework.Capabilities{framework.CapabilityRootController}
	if d.listener != nil {
		caps = caps.With(framework.CapabilityNotifications)
	}
	if d.params.Permissionless.IsConfigured() {
		caps = caps.With(framework.CapabilityPermissionlessUser)
	}
	return caps
}

func (d *Driver) testLogger() ldtest.TestLogger {
	console := d.consoleLogger
	if console == nil {
		console = ldtest.ConsoleTestLogger{
			DebugOutputOnFailure: d.params.Debug || d.params.DebugAll,
			DebugOutputOnSuccess: d.params.DebugAll,
		}
	}
	loggers := []ldtest.TestLogger{console, ldtest.PlainTestLogger{Logger: d.logger}}
	if d.params.JUnitFile != "" {
		loggers = append(loggers, ldtest.NewJUnitTestLogger(
			d.params.JUnitFile,
			map[string]string{"rootURL": d.params.RootURL, "requirements": d.params.Requirements},
			d.filters,
		))
	}
	return &ldtest.MultiTestLogger{Loggers: loggers}
}

// Filter combines the run/skip patterns, the requirement levels and the suite file.
func (d *Driver) Filter() ldtest.Filter {
	return ldtest.AllFilters{
		d.filters,
		ldptests.LevelFilter(d.registry, d.levels),
		ldtest.FilterFunc(d.inSuite),
	}
}

// DescribeFilters writes the run and skip patterns in effect, if any.
func (d *Driver) DescribeFilters(w io.Writer) {
	d.filters.Describe(w)
}

func (d *Driver) inSuite(id ldtest.TestID) bool {
	if len(id) == 0 {
		return true
	}
	if !d.suiteDef.IncludesClass(id[0]) {
		return false
	}
	if len(id) < 2 {
		return true
	}
	desc, err := d.registry.Lookup(id.Last())
	if err != nil {
		return true
	}
	return d.suiteDef.IncludesTest(desc.Title, desc.ID)
}

func (d *Driver) runTests() (err error) {
	d.enter(PhaseRunning)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("test run aborted: %v", r)
		}
	}()

	tc := &ldptests.TestContext{
		Harness:        d.harness,
		Tracker:        d.tracker,
		ScratchURL:     d.scratch,
		RootController: d.params.RootController,
		Permissionless: d.params.Permissionless,
		Fixtures:       d.fixtures,
		Notifications:  d.listener,
		EventTimeout:   d.eventTimeout,
	}
	testLogger := d.testLogger()
	d.results = ldtest.Run(
		ldtest.TestConfiguration{
			Filter:       d.Filter(),
			TestLogger:   testLogger,
			Capabilities: d.capabilities(),
		},
		func(t *ldtest.T) { ldptests.RunAll(t, d.registry, d.cases, tc) },
	)
	if err := testLogger.EndLog(d.results); err != nil {
		return fmt.Errorf("writing test log: %w", err)
	}
	return nil
}

func (d *Driver) teardown(ctx context.Context, started time.Time) error {
	d.tracker.Cleanup(ctx)
	if d.listener != nil {
		if err := d.listener.Close(); err != nil {
			d.logger.Printf("Closing broker connection: %s", err)
		}
	}

	rows, err := report.Aggregate(d.registry, d.results.Passed, d.results.Failures, d.results.Skipped)
	if err != nil {
		return fmt.Errorf("aggregating results: %w", err)
	}
	d.rows = rows

	emitters := d.emitters
	if emitters == nil {
		emitters = report.DefaultEmitters(d.params.OutputDir, d.logger)
	}
	info := report.RunInfo{
		Title:    ReportTitle,
		RootURL:  d.params.RootURL,
		Started:  started,
		Finished: time.Now(),
	}
	var errs []error
	for _, e := range emitters {
		if err := e.Emit(rows, info); err != nil {
			errs = append(errs, fmt.Errorf("writing report: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (d *Driver) release() {
	if d.logFile != nil {
		_ = d.logFile.Close()
	}
	if d.lock != nil {
		_ = d.lock.Unlock()
	}
}
