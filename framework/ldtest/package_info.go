// Package ldtest runs a tree of named conformance tests against a live repository. A test
// scope behaves like Go's testing.T but runs as application code, so that results can be
// filtered by clause, logged as they happen and aggregated into reports afterward.
package ldtest
