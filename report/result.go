package report

import (
	"errors"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"
)

// ErrDuplicateResult means two outcomes were reported for the same test.
var ErrDuplicateResult = errors.New("duplicate test result")

// Status is the outcome of a single test.
type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusSkip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// ResultRow is one line of a report. Detail holds the failure messages and stacktrace for a
// failed test, the reason for a skipped one, and nothing for a passed one.
type ResultRow struct {
	SpecLink     string
	Status       Status
	Description  string
	DisplayLabel string
	Level        testinfo.RequirementLevel
	Detail       string
	Title        string
	ID           string
	TestClass    string
}

// Counts is the number of rows with each status.
type Counts struct {
	Passed  int
	Failed  int
	Skipped int
}

func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped
}

func Summarize(rows []ResultRow) Counts {
	var c Counts
	for _, r := range rows {
		switch r.Status {
		case StatusPass:
			c.Passed++
		case StatusFail:
			c.Failed++
		case StatusSkip:
			c.Skipped++
		}
	}
	return c
}
