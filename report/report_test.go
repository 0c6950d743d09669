package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func makeRegistry(t *testing.T) *testinfo.Registry {
	r := testinfo.NewRegistry()
	for _, d := range []testinfo.TestDescriptor{
		{ID: "3.1.1-A", TestClass: "Container", Title: "createLDPC", Level: testinfo.MUST,
			SpecLink: "https://example.org/spec#ldpc", Description: "create a container"},
		{ID: "3.1.1-B", TestClass: "Container", Title: "constrainedBy", Level: testinfo.MUST,
			SpecLink: "https://example.org/spec#ldpc", Description: "409 | constrainedBy"},
		{ID: "3.9-A", TestClass: "ExternalBinaryContent", Title: "externalContent", Level: testinfo.SHOULD,
			SpecLink: "https://example.org/spec#external", Description: "external content"},
	} {
		_, err := r.Register(d)
		require.NoError(t, err)
	}
	return r
}

func result(class, title string) ldtest.TestResult {
	return ldtest.TestResult{TestID: ldtest.TestID{class, title}}
}

var (
	passed = []ldtest.TestResult{result("Container", "createLDPC")}
	failed = []ldtest.TestResult{{
		TestID: ldtest.TestID{"Container", "constrainedBy"},
		Errors: []error{errors.New("expected constrainedBy link")},
	}}
	skipped = []ldtest.TestResult{{
		TestID:     ldtest.TestID{"ExternalBinaryContent", "externalContent"},
		Skipped:    true,
		SkipReason: "server returned a relative location",
	}}
)

func TestAggregate(t *testing.T) {
	rows, err := Aggregate(makeRegistry(t), passed, failed, skipped)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "3.1.1-A createLDPC", rows[0].DisplayLabel)
	assert.Equal(t, StatusPass, rows[0].Status)
	assert.Equal(t, "", rows[0].Detail)
	assert.Equal(t, "Container", rows[0].TestClass)

	assert.Equal(t, StatusFail, rows[1].Status)
	assert.Contains(t, rows[1].Detail, "expected constrainedBy link")

	assert.Equal(t, StatusSkip, rows[2].Status)
	assert.Equal(t, "server returned a relative location", rows[2].Detail)
	assert.Equal(t, testinfo.SHOULD, rows[2].Level)
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	registry := makeRegistry(t)
	expected, err := Aggregate(registry, passed, failed, skipped)
	require.NoError(t, err)

	moreFailed := append([]ldtest.TestResult{result("ExternalBinaryContent", "externalContent")}, failed...)
	a, err := Aggregate(registry, passed, moreFailed, nil)
	require.NoError(t, err)
	reversed := []ldtest.TestResult{moreFailed[1], moreFailed[0]}
	b, err := Aggregate(registry, passed, reversed, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Aggregate(registry, nil, nil, append(append(append([]ldtest.TestResult(nil), skipped...), failed...), passed...))
	require.NoError(t, err)
	for i := range expected {
		assert.Equal(t, expected[i].DisplayLabel, c[i].DisplayLabel)
	}
}

func TestAggregateUnknownTest(t *testing.T) {
	_, err := Aggregate(makeRegistry(t), []ldtest.TestResult{result("Container", "nope")}, nil, nil)
	assert.ErrorIs(t, err, testinfo.ErrNotFound)
}

func TestAggregateDuplicateResult(t *testing.T) {
	_, err := Aggregate(makeRegistry(t), passed, []ldtest.TestResult{result("Container", "createLDPC")}, nil)
	assert.ErrorIs(t, err, ErrDuplicateResult)
}

func TestSummarize(t *testing.T) {
	rows, err := Aggregate(makeRegistry(t), passed, failed, skipped)
	require.NoError(t, err)
	assert.Equal(t, Counts{Passed: 1, Failed: 1, Skipped: 1}, Summarize(rows))
	assert.Equal(t, 3, Summarize(rows).Total())
	assert.Equal(t, Counts{}, Summarize(nil))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "PASS", StatusPass.String())
	assert.Equal(t, "FAIL", StatusFail.String())
	assert.Equal(t, "SKIP", StatusSkip.String())
}

var info = RunInfo{ //nolint:gochecknoglobals
	Title:    "Fedora API test suite",
	RootURL:  "http://localhost:8080/rest/",
	Started:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	Finished: time.Date(2026, 1, 2, 3, 5, 5, 0, time.UTC),
}

func TestHTMLEmitter(t *testing.T) {
	rows, err := Aggregate(makeRegistry(t), passed, failed, skipped)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", HTMLFileName)
	require.NoError(t, NewHTMLEmitter(path, nil).Emit(rows, info))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<title>Fedora API test suite</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `<a href="https://example.org/spec#ldpc">3.1.1-A createLDPC</a>`)
	assert.Contains(t, html, "409 | constrainedBy")
	assert.Contains(t, html, "3 tests: 1 passed, 1 failed, 1 skipped")
	assert.Less(t, strings.Index(html, "3.1.1-A"), strings.Index(html, "3.9-A"))
}

func TestMarkdownEscapesCells(t *testing.T) {
	md := Markdown([]ResultRow{{DisplayLabel: "x", Description: "one\ntwo", Detail: "a|b\n<script>"}}, RunInfo{Title: "t"})
	assert.Contains(t, md, "| one two |")
	assert.Contains(t, md, `a\|b<br>\<script\>`)
}

func TestHTMLKeepsDetailLineBreaks(t *testing.T) {
	rows := []ResultRow{{DisplayLabel: "x", Status: StatusFail, Detail: "expected 201\nat container line 12\n<b>bold</b>"}}
	var b strings.Builder
	require.NoError(t, NewHTMLEmitter("unused", nil).Render(&b, rows, RunInfo{Title: "t"}))
	assert.Contains(t, b.String(), "expected 201<br>at container line 12<br>&lt;b&gt;bold&lt;/b&gt;")
}

func TestEARLEmitter(t *testing.T) {
	rows, err := Aggregate(makeRegistry(t), passed, failed, skipped)
	require.NoError(t, err)

	e := NewEARLEmitter(filepath.Join(t.TempDir(), EARLFileName), nil)
	e.Assertor = "urn:uuid:00000000-0000-0000-0000-000000000000"
	var b strings.Builder
	require.NoError(t, e.Render(&b, rows, info))

	triples, err := rdf.NewTripleDecoder(strings.NewReader(b.String()), rdf.Turtle).DecodeAll()
	require.NoError(t, err)

	outcomes := map[string]int{}
	assertions := 0
	for _, tr := range triples {
		switch tr.Pred.String() {
		case earlNS + "outcome":
			outcomes[tr.Obj.String()]++
		case rdfType:
			if tr.Obj.String() == earlNS+"Assertion" {
				assertions++
			}
		}
	}
	assert.Equal(t, 3, assertions)
	assert.Equal(t, map[string]int{earlNS + "passed": 1, earlNS + "failed": 1, earlNS + "untested": 1}, outcomes)
	assert.Contains(t, b.String(), "urn:uuid:00000000-0000-0000-0000-000000000000")
}

func TestEARLGeneratesAssertor(t *testing.T) {
	triples, err := NewEARLEmitter("", nil).Triples(nil, RunInfo{Title: "t"})
	require.NoError(t, err)
	require.NotEmpty(t, triples)
	assert.True(t, strings.HasPrefix(triples[0].Subj.String(), "urn:uuid:"))
}

func TestJSONEmitter(t *testing.T) {
	rows, err := Aggregate(makeRegistry(t), passed, failed, skipped)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), JSONFileName)
	require.NoError(t, NewJSONEmitter(path, nil).Emit(rows, info))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	require.True(t, gjson.ValidBytes(data))
	assert.Equal(t, int64(3), gjson.GetBytes(data, "summary.total").Int())
	assert.Equal(t, "FAIL", gjson.GetBytes(data, "results.1.status").String())
	assert.Equal(t, "server returned a relative location", gjson.GetBytes(data, "results.2.detail").String())
	assert.False(t, gjson.GetBytes(data, "results.0.detail").Exists())
	assert.Equal(t, "2026-01-02T03:04:05Z", gjson.GetBytes(data, "started").String())
}

func TestDefaultEmitters(t *testing.T) {
	dir := t.TempDir()
	for _, e := range DefaultEmitters(dir, nil) {
		require.NoError(t, e.Emit(nil, info))
	}
	for _, name := range []string{HTMLFileName, EARLFileName, JSONFileName} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
