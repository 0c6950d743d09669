package ldptests

import (
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/cleanup"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/config"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/data"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/messaging"
)

// PermissionlessUser is the harness user name of the user with no granted permissions.
const PermissionlessUser = "permissionless"

const defaultEventTimeout = time.Second * 10

// TestContext is everything a test needs, passed explicitly to every TestCase.
type TestContext struct {
	Harness *harness.TestHarness
	Tracker *cleanup.Tracker
	// ScratchURL is the container every fixture is created beneath.
	ScratchURL     string
	RootController config.UserIdentity
	Permissionless config.UserIdentity
	Fixtures       *data.FixtureSet
	// Notifications is nil when no broker is configured.
	Notifications *messaging.Listener
	EventTimeout  time.Duration
}

func (c *TestContext) eventTimeout() time.Duration {
	if c.EventTimeout <= 0 {
		return defaultEventTimeout
	}
	return c.EventTimeout
}
