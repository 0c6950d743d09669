// Package mockldp is an in-memory LDP repository that the harness's own tests run against.
//
// It implements enough of the Fedora HTTP API for the conformance tests to pass against it, and
// Config switches let tests make it misbehave in specific ways.
package mockldp

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// RootPath is the path of the repository root container.
const RootPath = "/rest"

// Path suffixes of the auxiliary resources every resource has.
const (
	versionsSuffix  = "/fcr:versions"
	aclSuffix       = "/fcr:acl"
	metadataSuffix  = "/fcr:metadata"
	tombstoneSuffix = "/fcr:tombstone"
)

// Config changes the repository's behavior. The zero value is a well-behaved repository.
type Config struct {
	// AdminAuthorization is the Authorization header of the only user an ACL grants access to.
	AdminAuthorization string
	// MaxDepth, if non-zero, refuses with 409 to create resources more than this many levels
	// below the root.
	MaxDepth int
	// OmitConstrainedBy leaves the constrainedBy link off 409 responses.
	OmitConstrainedBy bool
	// RelativeLocations sends Location headers as absolute paths without scheme and host.
	RelativeLocations bool
	// DisableDelete removes DELETE from Allow and answers it with 405.
	DisableDelete bool
	// ShallowDelete deletes only the target of a DELETE, not its descendants.
	ShallowDelete bool
	// NoTombstones removes deleted resources entirely instead of leaving a tombstone.
	NoTombstones bool
}

type kind int

const (
	basicContainer kind = iota
	directContainer
	indirectContainer
	rdfSource
	nonRDFSource
)

func (k kind) isContainer() bool {
	return k == basicContainer || k == directContainer || k == indirectContainer
}

func (k kind) isRDF() bool {
	return k != nonRDFSource
}

type resource struct {
	path        string
	kind        kind
	body        []byte
	contentType string
	children    []string
	version     int
	deleted     bool
	aclAgent    string
	aclBody     []byte
	mementos    []string
	memento     bool
}

// Repository is an http.Handler serving the repository rooted at RootPath.
type Repository struct {
	config      Config
	resources   map[string]*resource
	requests    []string
	handler     http.Handler
	debugLogger framework.Logger
	lock        sync.Mutex
}

func NewRepository(config Config, debugLogger framework.Logger) *Repository {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	r := &Repository{
		config:      config,
		resources:   map[string]*resource{RootPath: {path: RootPath, kind: basicContainer}},
		debugLogger: debugLogger,
	}

	router := mux.NewRouter()
	root := router.PathPrefix(RootPath).Subrouter()
	root.Methods("GET", "HEAD").HandlerFunc(r.serveGet)
	root.Methods("OPTIONS").HandlerFunc(r.serveOptions)
	root.Methods("POST").HandlerFunc(r.servePost)
	root.Methods("PUT").HandlerFunc(r.servePut)
	root.Methods("PATCH").HandlerFunc(r.servePatch)
	root.Methods("DELETE").HandlerFunc(r.serveDelete)
	r.handler = router

	return r
}

func (r *Repository) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.lock.Lock()
	r.requests = append(r.requests, req.Method+" "+req.URL.Path)
	r.lock.Unlock()
	r.debugLogger.Printf("mock repository: %s %s", req.Method, req.URL.Path)
	r.handler.ServeHTTP(w, req)
}

// Requests returns "METHOD path" for every request received so far.
func (r *Repository) Requests() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.requests...)
}

// Exists returns true if a live (not deleted) resource has the path.
func (r *Repository) Exists(path string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	res, ok := r.resources[cleanPath(path)]
	return ok && !res.deleted
}

// Paths returns the paths of all live resources other than the root.
func (r *Repository) Paths() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	var ret []string
	for p, res := range r.resources {
		if p != RootPath && !res.deleted {
			ret = append(ret, p)
		}
	}
	return ret
}

func cleanPath(p string) string {
	return strings.TrimRight(p, "/")
}

func depth(p string) int {
	return strings.Count(strings.TrimPrefix(cleanPath(p), RootPath), "/")
}

func newSlug() string {
	return uuid.NewString()
}

func mementoTimestamp(n int) string {
	return fmt.Sprintf("%s%03d", time.Now().UTC().Format("20060102150405"), n)
}
