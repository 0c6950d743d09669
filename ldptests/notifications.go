package ldptests

import (
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/ldtest"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/messaging"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

func notificationTests() []TestCase {
	return []TestCase{
		newTestCase("6.1-A", "resourceCreationEvent", MUST, fedoraSpec+"notifications",
			"Creating a resource must emit a notification of type Create about that resource.",
			resourceCreationEvent),
		newTestCase("6.1-B", "resourceDeletionEvent", SHOULD, fedoraSpec+"notifications",
			"Deleting a resource should emit a notification of type Delete about that resource.",
			resourceDeletionEvent),
	}
}

func (c *TestContext) requireNotifications(t *ldtest.T) {
	t.Helper()
	t.RequireCapability(framework.CapabilityNotifications)
	if c.Notifications == nil {
		t.SkipWithReason("no message broker connection")
	}
}

func sameResource(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}

func (c *TestContext) awaitEvent(t *ldtest.T, resource, eventType string) {
	t.Helper()
	event, ok := c.Notifications.Await(c.eventTimeout(), func(e messaging.Event) bool {
		return sameResource(e.ObjectID(), resource) && e.HasType(eventType)
	})
	if !ok {
		t.Errorf("no %s event for %s within %s", eventType, resource, c.eventTimeout())
		return
	}
	t.Debug("received event %s", event.ID())
}

func resourceCreationEvent(t *ldtest.T, c *TestContext) {
	c.requireNotifications(t)
	r := c.createContainer(t, c.ScratchURL)
	c.awaitEvent(t, r, "Create")
}

func resourceDeletionEvent(t *ldtest.T, c *TestContext) {
	c.requireNotifications(t)
	r := c.createContainer(t, c.ScratchURL)
	m.In(t).Require(c.send(t, "DELETE", r), IsSuccessful())
	c.awaitEvent(t, r, "Delete")
}
