// Package framework contains the low-level implementation of test harness infrastructure
// that does not know anything about the Fedora/LDP specification. The base package contains
// shared types such as Logger; other components are in the subpackages harness and ldtest.
//
// The general model is:
//
// 1. The test harness communicates with a single target repository through plain HTTP
// requests, adding authentication for one of the configured user identities.
//
// 2. There is a general notion of a test scope which is similar to Go's testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// pass/fail/skip results.
//
// The domain-specific code that knows what is being tested is responsible for building
// requests, interpreting the responses, and describing each test for the reports.
package framework
