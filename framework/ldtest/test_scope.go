package ldtest

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
)

type environment struct {
	config  TestConfiguration
	results Results
}

// T represents a test scope. It is very similar to Go's testing.T type.
type T struct {
	env         *environment
	id          TestID
	debugLogger framework.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	hasSubtests bool
	cleanups    []func()
	errors      []error
	helperFns   []string
}

// TestConfiguration contains options for the entire test run.
type TestConfiguration struct {
	// Filter is an optional function for determining which tests to run based on their names.
	Filter Filter

	// TestLogger receives status information about each test.
	TestLogger TestLogger

	// Context is an optional value of any type defined by the application which can be accessed from tests.
	Context interface{}

	// Capabilities is a list of strings which are used by T.RequireCapability.
	Capabilities framework.Capabilities
}

func (t TestConfiguration) WithContext(context interface{}) TestConfiguration {
	t.Context = context
	return t
}

// Run starts a top-level test scope. Tests run one at a time, in the order that the action
// starts them; nothing here is safe for use from multiple goroutines.
func Run(
	config TestConfiguration,
	action func(*T),
) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	env := &environment{
		config: config,
	}
	t := &T{env: env}
	t.run(action)
	return env.results
}

func (t *T) run(action func(*T)) (result TestResult) {
	result.TestID = t.id
	startTime := time.Now()
	defer func() {
		if r := recover(); r != nil && !t.skipped {
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.addError(addError)
			}
		}
		t.runCleanups()
		result.Errors = t.errors
		result.Skipped = t.skipped
		result.SkipReason = t.skipReason
		result.Duration = time.Since(startTime)
		t.recordResult(result)
	}()

	action(t)
	return result
}

func (t *T) runCleanups() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil && r != t {
					t.failed = true
					t.addError(fmt.Errorf("unexpected panic in deferred cleanup: %+v", r))
				}
			}()
			t.cleanups[i]()
		}()
	}
	t.cleanups = nil
}

func (t *T) recordResult(result TestResult) {
	results := &t.env.results
	results.Tests = append(results.Tests, result)
	if len(t.id) == 0 {
		return
	}
	switch {
	case t.skipped:
		if !t.hasSubtests {
			results.Skipped = append(results.Skipped, result)
		}
	case t.failed:
		results.Failures = append(results.Failures, result)
	case !t.hasSubtests:
		results.Passed = append(results.Passed, result)
	}
}

func (t *T) addError(err error) {
	t.errors = append(t.errors, err)
	t.env.config.TestLogger.TestError(t.id, err)
}

// ID returns the full name of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run runs a subtest in its own scope.
//
// This is equivalent to Go's testing.T.Run. A subtest that is excluded by the configured
// Filter is reported to the TestLogger as skipped, but does not appear in the Results.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)

	// A scope that tried to run subtests is a parent even if the filter excluded all of them.
	t.hasSubtests = true
	t.env.config.TestLogger.TestStarted(id)
	if t.env.config.Filter != nil && !t.env.config.Filter.Match(id) {
		t.env.config.TestLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &T{
		id:  id,
		env: t.env,
	}
	t.debugLogger.AddChildLogger(&c1.debugLogger) // see comments on t.DebugLogger()
	result := c1.run(action)
	t.debugLogger.RemoveChildLogger(&c1.debugLogger)
	if c1.skipped {
		t.env.config.TestLogger.TestSkipped(id, c1.skipReason)
	} else {
		t.env.config.TestLogger.TestFinished(id, result, c1.debugLogger.Output())
	}
}

// Errorf reports a test failure. It is equivalent to Go's testing.T.Errorf. It does not cause the test
// to terminate, but adds the failure message to the output and marks the test as failed.
//
// You will rarely use this method directly; it is part of this type's implementation of the base
// interfaces testing.T and assert.TestingT, allowing it to be called from assertion helpers.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := fmt.Errorf(format, args...)

	stacktrace := getStacktrace(false, t.helperFns)
	t.addError(transformError(err, stacktrace))
}

// FailNow causes the test to immediately terminate and be marked as failed.
//
// You will rarely use this method directly; it is part of this type's implementation of the base
// interfaces testing.T and assert.TestingT, allowing it to be called from assertion helpers.
func (t *T) FailNow() {
	t.failed = true
	panic(t)
}

// Failed returns true if the test has been marked as failed so far.
func (t *T) Failed() bool {
	return t.failed
}

// Skip causes the test to immediately terminate and be marked as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is equivalent to Skip but provides a message. The message is what appears in
// the reports for this test, so it should make sense to someone who did not read the code.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Skipf is equivalent to SkipWithReason with a formatted message.
func (t *T) Skipf(format string, args ...interface{}) {
	t.SkipWithReason(fmt.Sprintf(format, args...))
}

// Debug writes a message to the output for this test scope.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger instance for writing output for this test scope.
//
// The output that is captured for a test will be passed to TestLogger.TestFinished at the end of
// the test. The test runner can choose whether to display this or not based on command-line options.
//
// When a test has subtests (created with t.Run), the logger for a subtest starts out with a copy of
// any output that was already logged for the parent test. During the lifetime of the subtest, any
// further output that is sent to the parent test's logger will go to the child test's logger
// instead.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a cleanup function which is guaranteed to be called when this test scope
// exits for any reason. Unlike a Go defer statement, Defer can be used from within helper
// functions.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// Context returns the application-defined context value, if any, that was specified in the
// TestConfiguration.
func (t *T) Context() interface{} {
	return t.env.config.Context
}

// Capabilities returns the optional features that are available for this run.
func (t *T) Capabilities() framework.Capabilities {
	return append(framework.Capabilities(nil), t.env.config.Capabilities...)
}

// RequireCapability causes the test to be skipped if the named capability is not available.
func (t *T) RequireCapability(name string) {
	if !t.Capabilities().Has(name) {
		t.SkipWithReason(fmt.Sprintf("test run does not have capability %q", name))
	}
}

// Helper marks the function that calls it as a test helper that shouldn't appear in stacktraces.
// Equivalent to Go's testing.T.Helper().
func (t *T) Helper() {
	pc, _, _, ok := runtime.Caller(1) // 0 is Helper() itself, 1 is who called it
	if !ok {
		return
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return
	}
	t.helperFns = append(t.helperFns, f.Name())
}
