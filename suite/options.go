package suite

import (
	"net/http"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/auth"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/report"
)

// Option is the vararg option type for NewDriver.
type Option = helpers.ConfigOption[Driver]

type optionFunc = helpers.ConfigOptionFunc[Driver]

// WithAuthenticators supplies the authenticator plugins to choose from. Without it, only the
// default Basic authenticator is available.
func WithAuthenticators(r *auth.Registry) Option {
	return optionFunc(func(d *Driver) error {
		d.authenticators = r
		return nil
	})
}

// WithHTTPClient replaces the HTTP client used to talk to the repository.
func WithHTTPClient(client *http.Client) Option {
	return optionFunc(func(d *Driver) error {
		d.client = client
		return nil
	})
}

// WithConsoleLogger replaces the colored console output.
func WithConsoleLogger(l ldtest.TestLogger) Option {
	return optionFunc(func(d *Driver) error {
		d.consoleLogger = l
		return nil
	})
}

// WithEmitters replaces the default HTML, EARL and JSON report emitters. With no arguments, no
// reports are written.
func WithEmitters(emitters ...report.Emitter) Option {
	return optionFunc(func(d *Driver) error {
		d.emitters = append([]report.Emitter{}, emitters...)
		return nil
	})
}

// WithEventTimeout sets how long notification tests wait for an event.
func WithEventTimeout(timeout time.Duration) Option {
	return optionFunc(func(d *Driver) error {
		d.eventTimeout = timeout
		return nil
	})
}
