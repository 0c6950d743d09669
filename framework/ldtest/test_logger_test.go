package ldtest

import (
	"errors"
	"strings"
	"testing"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events []string
	endErr error
}

func (r *recordingTestLogger) TestStarted(id TestID) { r.events = append(r.events, "start "+id.String()) }
func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String()+": "+err.Error())
}
func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, _ framework.CapturedOutput) {
	r.events = append(r.events, "finish "+id.String())
}
func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skip "+id.String()+": "+reason)
}
func (r *recordingTestLogger) EndLog(Results) error { return r.endErr }

func TestMultiTestLoggerFansOutEvents(t *testing.T) {
	l1, l2 := &recordingTestLogger{}, &recordingTestLogger{endErr: errors.New("disk full")}
	multi := &MultiTestLogger{Loggers: []TestLogger{l1, l2}}

	results := Run(TestConfiguration{TestLogger: multi}, func(ldt *T) {
		ldt.Run("a", func(ldt1 *T) {})
		ldt.Run("b", func(ldt1 *T) { ldt1.SkipWithReason("nope") })
	})
	expected := []string{"start a", "finish a", "start b", "skip b: nope"}
	assert.Equal(t, expected, l1.events)
	assert.Equal(t, expected, l2.events)
	assert.EqualError(t, multi.EndLog(results), "disk full")
}

func TestPlainTestLoggerWritesExecutionLog(t *testing.T) {
	var buf strings.Builder
	logger := PlainTestLogger{Logger: framework.NewWriterLogger(&buf)}

	results := Run(TestConfiguration{TestLogger: logger}, func(ldt *T) {
		ldt.Run("passes", func(ldt1 *T) {})
		ldt.Run("fails", func(ldt1 *T) {
			ldt1.Debug("sent request")
			ldt1.Errorf("bad status")
		})
	})
	require.NoError(t, logger.EndLog(results))

	out := buf.String()
	assert.Contains(t, out, "START passes")
	assert.Contains(t, out, "PASS passes")
	assert.Contains(t, out, "ERROR fails: bad status")
	assert.Contains(t, out, "FAIL fails")
	assert.Contains(t, out, "sent request")
	assert.Contains(t, out, "Finished: 1 passed, 1 failed, 0 skipped")
}
