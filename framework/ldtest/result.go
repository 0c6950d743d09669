package ldtest

import (
	"fmt"
	"strings"
	"time"
)

// Results is everything that was recorded during a call to Run.
//
// Tests contains every scope that ran, including parent scopes and the unnamed root scope,
// in the order that they finished. Passed, Failures and Skipped are the three outcome buckets:
// Passed and Skipped only ever contain leaf scopes (ones that did not start subtests), while
// Failures contains any named scope that failed, since a parent can fail on its own account.
type Results struct {
	Tests    []TestResult
	Passed   []TestResult
	Failures []TestResult
	Skipped  []TestResult
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
	Duration   time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Count returns the total number of results in the three outcome buckets.
func (r Results) Count() int {
	return len(r.Passed) + len(r.Failures) + len(r.Skipped)
}

type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// Last returns the innermost name of the test, or "" for the root scope.
func (t TestID) Last() string {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
