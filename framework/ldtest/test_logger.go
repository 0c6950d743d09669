package ldtest

import (
	"fmt"
	"os"
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"

	"github.com/fatih/color"
)

var consoleTestErrorColor = color.New(color.FgYellow)              //nolint:gochecknoglobals
var consoleTestFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleTestSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)               //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen)                 //nolint:gochecknoglobals

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
	EndLog(results Results) error
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                        {}
func (n nullTestLogger) TestError(TestID, error)                                   {}
func (n nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                                {}
func (n nullTestLogger) EndLog(Results) error                                      { return nil }

type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(FormatErrors([]error{err}), "\n") {
		_, _ = consoleTestErrorColor.Printf("  %s\n", line)
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	failed := len(result.Errors) != 0
	if failed {
		_, _ = consoleTestFailedColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Println(debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s\n", id)
	} else {
		_, _ = consoleTestSkippedColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c ConsoleTestLogger) EndLog(results Results) error {
	fmt.Println()
	PrintResults(results)
	return nil
}

// PlainTestLogger writes the same events as ConsoleTestLogger, without colors, to a Logger.
// It is used for the execution log file, so debug output is always included for failures.
type PlainTestLogger struct {
	Logger framework.Logger
}

func (p PlainTestLogger) TestStarted(id TestID) {
	p.Logger.Printf("START %s", id)
}

func (p PlainTestLogger) TestError(id TestID, err error) {
	p.Logger.Printf("ERROR %s: %s", id, FormatErrors([]error{err}))
}

func (p PlainTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	if len(result.Errors) == 0 {
		p.Logger.Printf("PASS %s (%s)", id, result.Duration)
		return
	}
	p.Logger.Printf("FAIL %s (%s)", id, result.Duration)
	if len(debugOutput) > 0 {
		p.Logger.Println(debugOutput.ToString("    "))
	}
}

func (p PlainTestLogger) TestSkipped(id TestID, reason string) {
	p.Logger.Printf("SKIP %s %s", id, reason)
}

func (p PlainTestLogger) EndLog(results Results) error {
	p.Logger.Printf("Finished: %d passed, %d failed, %d skipped",
		len(results.Passed), len(results.Failures), len(results.Skipped))
	return nil
}

// MultiTestLogger sends every event to each of its Loggers in turn. EndLog is called on all of
// them even if one fails; the first error is returned.
type MultiTestLogger struct {
	Loggers []TestLogger
}

func (m *MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m.Loggers {
		l.TestStarted(id)
	}
}

func (m *MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m.Loggers {
		l.TestError(id, err)
	}
}

func (m *MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m.Loggers {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m *MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m.Loggers {
		l.TestSkipped(id, reason)
	}
}

func (m *MultiTestLogger) EndLog(results Results) error {
	var firstErr error
	for _, l := range m.Loggers {
		if err := l.EndLog(results); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func PrintResults(results Results) {
	if results.OK() {
		_, _ = allTestsPassedColor.Printf("All tests passed (%d passed, %d skipped)\n",
			len(results.Passed), len(results.Skipped))
	} else {
		_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "FAILED TESTS (%d):\n", len(results.Failures))
		for _, f := range results.Failures {
			_, _ = consoleTestFailedColor.Fprintf(os.Stderr, "  * %s\n", f.TestID)
		}
	}
}
