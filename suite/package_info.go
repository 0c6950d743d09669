// Package suite contains the Driver, which takes a configured run through setup, test execution
// and teardown.
package suite
