// Package cleanup removes the resources a test run created on the repository under test.
package cleanup

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
)

// TombstoneRel is the link relation that points from a deleted resource to its tombstone.
const TombstoneRel = "hasTombstone"

var duplicateSlashes = regexp.MustCompile(`/{2,}`) //nolint:gochecknoglobals

// Tracker records every resource a run creates and deletes them at teardown.
//
// Deletion is best-effort: failures are logged and never returned.
type Tracker struct {
	harness   *harness.TestHarness
	logger    framework.Logger
	resources []string
	scratch   string
	lock      sync.Mutex
}

func NewTracker(h *harness.TestHarness, logger framework.Logger) *Tracker {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Tracker{harness: h, logger: logger}
}

// RegisterResource appends a URL to the list of resources to delete. Empty URLs are ignored;
// duplicates are kept.
func (t *Tracker) RegisterResource(url string) {
	if url == "" {
		return
	}
	t.lock.Lock()
	t.resources = append(t.resources, url)
	t.lock.Unlock()
}

// SetScratchContainerURL records the container that every test fixture is created beneath.
func (t *Tracker) SetScratchContainerURL(url string) {
	t.lock.Lock()
	t.scratch = url
	t.lock.Unlock()
}

func (t *Tracker) ScratchContainerURL() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.scratch
}

// Tracked returns a copy of the registered resources in registration order.
func (t *Tracker) Tracked() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return helpers.CopyOf(t.resources)
}

// Cleanup deletes everything that was registered, then forgets it.
//
// If the scratch container allows DELETE and deleting it succeeds, nothing else is deleted:
// the repository is trusted to have removed its descendants. Otherwise the registered resources
// are deleted newest first and the scratch container last.
func (t *Tracker) Cleanup(ctx context.Context) {
	t.lock.Lock()
	resources, scratch := t.resources, t.scratch
	t.resources, t.scratch = nil, ""
	t.lock.Unlock()

	if scratch != "" {
		if t.allowsDelete(ctx, scratch) && t.delete(ctx, scratch) {
			if len(resources) != 0 {
				// A server that deletes shallowly but still answers 2xx leaves these behind.
				t.logger.Printf("Deleted scratch container %s; %d tracked resources were not deleted individually",
					scratch, len(resources))
			}
			return
		}
		t.logger.Printf("Could not delete scratch container %s recursively; deleting %d resources one by one",
			scratch, len(resources))
	}

	order := make([]string, 0, len(resources)+1)
	for i := len(resources) - 1; i >= 0; i-- {
		order = append(order, resources[i])
	}
	if scratch != "" {
		order = append(order, scratch)
	}
	for _, u := range order {
		t.delete(ctx, u)
	}
}

func (t *Tracker) allowsDelete(ctx context.Context, url string) bool {
	resp, err := t.harness.Send("OPTIONS", url, harness.WithContext(ctx))
	if err != nil {
		t.logger.Printf("OPTIONS %s failed during cleanup: %s", url, err)
		return false
	}
	return resp.Allows("DELETE")
}

// delete returns true if the repository answered 200 or 204. A successful delete is followed by
// deletion of the resource's tombstone, if it has one.
func (t *Tracker) delete(ctx context.Context, url string) bool {
	resp, err := t.harness.Send("DELETE", url, harness.WithContext(ctx))
	if err != nil {
		t.logger.Printf("Failed to delete %s: %s", url, err)
		return false
	}
	if !isDeleteSuccess(resp.StatusCode) {
		t.logger.Printf("Failed to delete %s: status %d", url, resp.StatusCode)
		return false
	}
	t.deleteTombstone(ctx, url)
	return true
}

func (t *Tracker) deleteTombstone(ctx context.Context, url string) {
	resp, err := t.harness.Send("HEAD", url, harness.WithContext(ctx))
	if err != nil {
		t.logger.Printf("HEAD %s failed while looking for a tombstone: %s", url, err)
		return
	}
	for _, l := range resp.Links() {
		if !isTombstoneRel(l.Rel) {
			continue
		}
		tombstone := NormalizeURL(harness.Resolve(url, l.URL))
		tr, err := t.harness.Send("DELETE", tombstone, harness.WithContext(ctx))
		switch {
		case err != nil:
			t.logger.Printf("Failed to delete tombstone %s: %s", tombstone, err)
		case !isDeleteSuccess(tr.StatusCode):
			t.logger.Printf("Failed to delete tombstone %s: status %d", tombstone, tr.StatusCode)
		}
	}
}

func isDeleteSuccess(status int) bool {
	return status == 200 || status == 204
}

func isTombstoneRel(rel string) bool {
	return rel == TombstoneRel || strings.HasSuffix(rel, "#"+TombstoneRel)
}

// NormalizeURL collapses repeated slashes in a URL, leaving the one after the scheme alone.
func NormalizeURL(u string) string {
	prefix := ""
	if i := strings.Index(u, "://"); i >= 0 {
		prefix, u = u[:i+3], u[i+3:]
	}
	return prefix + duplicateSlashes.ReplaceAllString(u, "/")
}
