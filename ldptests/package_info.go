// Package ldptests contains the conformance tests themselves.
//
// Each test is a TestCase: a testinfo.TestDescriptor naming the clause it checks, and a function
// run inside an ldtest.T scope. Tests are grouped into classes; within a class they run in
// ascending priority order, and later tests may rely on what earlier ones created.
package ldptests
