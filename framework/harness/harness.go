package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
)

// Credentials adds authentication information to an outgoing request. It is implemented by the
// tokens that the auth package creates for each configured user.
type Credentials interface {
	AddAuthInfo(req *http.Request) *http.Request
}

// TestHarness is the component that manages communication with the repository under test.
//
// It holds the repository's root URL, an HTTP client, and the credentials of each configured
// user. It contains no domain-specific test logic, but only provides a general mechanism for
// test suites to build on.
type TestHarness struct {
	rootURL     string
	client      *http.Client
	credentials map[string]Credentials
	logger      framework.Logger
}

// NewTestHarness creates a TestHarness for the repository at rootURL. If client is nil, a plain
// client with no timeout of its own is used.
func NewTestHarness(rootURL string, client *http.Client, debugLogger framework.Logger) *TestHarness {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if client == nil {
		client = &http.Client{}
	}
	return &TestHarness{
		rootURL:     rootURL,
		client:      client,
		credentials: make(map[string]Credentials),
		logger:      debugLogger,
	}
}

// RootURL returns the base URL of the repository under test.
func (h *TestHarness) RootURL() string {
	return h.rootURL
}

// SetCredentials associates credentials with a user name. Requests are sent with the credentials
// of DefaultUser unless AsUser or Anonymous says otherwise.
func (h *TestHarness) SetCredentials(user string, c Credentials) {
	if c == nil {
		delete(h.credentials, user)
		return
	}
	h.credentials[user] = c
}

// HasUser returns true if credentials were configured for the user.
func (h *TestHarness) HasUser(user string) bool {
	_, ok := h.credentials[user]
	return ok
}

// Send issues a single HTTP request and reads the whole response. A non-2xx status is not an
// error; only transport failures are.
func (h *TestHarness) Send(method, target string, options ...RequestOption) (*Response, error) {
	params := Request{Header: make(http.Header), User: DefaultUser}
	for _, o := range options {
		if err := o.Configure(&params); err != nil {
			return nil, err
		}
	}
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var bodyReader io.Reader
	if params.Body != nil {
		bodyReader = bytes.NewReader(params.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, err
	}
	for name, values := range params.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if !params.Anonymous {
		if c, ok := h.credentials[params.User]; ok {
			req = c.AddAuthInfo(req)
		}
	}

	h.logger.Printf("%s %s", method, target)
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Printf("%s %s failed: %s", method, target, err)
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s %s: %w", method, target, err)
	}
	h.logger.Printf("%s %s -> %d", method, target, resp.StatusCode)
	return &Response{
		Method:     method,
		URL:        target,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// Resolve makes a possibly relative reference absolute against base. Unparseable input is
// returned unchanged.
func Resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
