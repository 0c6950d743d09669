package report

import (
	"fmt"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/testinfo"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Aggregate builds one row per outcome and returns the rows ordered by display label, so the
// same outcomes always produce the same report regardless of the order they were recorded in.
//
// Every outcome must belong to a registered test: the innermost element of its test ID is looked
// up as a title. An unknown title, or a second outcome for a test that already has one, is an
// error, since the report would otherwise be silently wrong.
func Aggregate(registry *testinfo.Registry, passed, failed, skipped []ldtest.TestResult) ([]ResultRow, error) {
	rows := make(map[string]ResultRow)
	add := func(results []ldtest.TestResult, status Status) error {
		for _, r := range results {
			d, err := registry.Lookup(r.TestID.Last())
			if err != nil {
				return fmt.Errorf("result for %q: %w", r.TestID, err)
			}
			row := newRow(d, status, r)
			if _, exists := rows[row.DisplayLabel]; exists {
				return fmt.Errorf("%w: %s", ErrDuplicateResult, row.DisplayLabel)
			}
			rows[row.DisplayLabel] = row
		}
		return nil
	}
	if err := add(passed, StatusPass); err != nil {
		return nil, err
	}
	if err := add(failed, StatusFail); err != nil {
		return nil, err
	}
	if err := add(skipped, StatusSkip); err != nil {
		return nil, err
	}

	labels := maps.Keys(rows)
	slices.Sort(labels)
	ret := make([]ResultRow, 0, len(labels))
	for _, l := range labels {
		ret = append(ret, rows[l])
	}
	return ret, nil
}

func newRow(d testinfo.TestDescriptor, status Status, r ldtest.TestResult) ResultRow {
	row := ResultRow{
		SpecLink:     d.SpecLink,
		Status:       status,
		Description:  d.Description,
		DisplayLabel: d.DisplayLabel(),
		Level:        d.Level,
		Title:        d.Title,
		ID:           d.ID,
		TestClass:    d.TestClass,
	}
	switch status {
	case StatusFail:
		row.Detail = ldtest.FormatErrors(r.Errors)
	case StatusSkip:
		row.Detail = r.SkipReason
	}
	return row
}
