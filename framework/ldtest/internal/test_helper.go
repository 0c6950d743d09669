// Package internal holds code that the ldtest stacktrace tests need to live outside ldtest.
package internal

// RunAction calls action. Its frame stands in for a caller from another package.
func RunAction(action func()) {
	action()
}
