// Package report turns the outcome buckets of a test run into ordered result rows, and writes
// those rows out as an HTML page, an EARL assertion graph and a JSON document.
package report
