// Package auth turns configured user identities into credentials for requests to the
// repository under test.
//
// An Authenticator is chosen once per run from a Registry. The default authenticator sends
// HTTP Basic credentials, or a raw Authorization header when one was configured for the user.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/opt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DefaultAuthenticatorName is the name of the built-in authenticator.
const DefaultAuthenticatorName = "basic"

var (
	ErrUnknownAuthenticator   = errors.New("unknown authenticator")
	ErrAmbiguousAuthenticator = errors.New("more than one authenticator is available")
)

// User is what an Authenticator needs to know about a configured identity.
type User struct {
	WebID      string
	Name       string
	Password   opt.Maybe[string]
	AuthHeader opt.Maybe[string]
}

// AuthenticationToken adds authentication information to a request.
type AuthenticationToken interface {
	AddAuthInfo(req *http.Request) *http.Request
}

// Authenticator creates a token for a user.
type Authenticator interface {
	CreateAuthToken(user User) (AuthenticationToken, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(user User) (AuthenticationToken, error)

func (f AuthenticatorFunc) CreateAuthToken(user User) (AuthenticationToken, error) { return f(user) }

// HeaderToken sets the Authorization header to a fixed value.
type HeaderToken string

func (h HeaderToken) AddAuthInfo(req *http.Request) *http.Request {
	req.Header.Set("Authorization", string(h))
	return req
}

// BasicAuthenticator is the default authenticator. A raw Authorization header configured for
// the user takes precedence over name and password.
type BasicAuthenticator struct{}

func (BasicAuthenticator) CreateAuthToken(user User) (AuthenticationToken, error) {
	if user.AuthHeader.IsDefined() {
		return HeaderToken(user.AuthHeader.Value()), nil
	}
	if user.Name == "" {
		return nil, fmt.Errorf("user %q has neither a name nor an authorization header", user.WebID)
	}
	creds := user.Name + ":" + user.Password.OrElse("")
	return HeaderToken("Basic " + base64.StdEncoding.EncodeToString([]byte(creds))), nil
}

// BearerAuthenticator sends a fixed bearer token for every user, unless a raw header is
// configured for the user.
type BearerAuthenticator struct {
	Token string
}

func (b BearerAuthenticator) CreateAuthToken(user User) (AuthenticationToken, error) {
	if user.AuthHeader.IsDefined() {
		return HeaderToken(user.AuthHeader.Value()), nil
	}
	if b.Token == "" {
		return nil, errors.New("bearer authenticator has no token")
	}
	return HeaderToken("Bearer " + b.Token), nil
}

// Registry holds the authenticators compiled into the program. It replaces plugin discovery:
// plugins are registered by name at startup and exactly one is resolved per run.
type Registry struct {
	plugins map[string]Authenticator
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Authenticator)}
}

// Register adds a plugin authenticator. Registering the same name twice replaces the first.
func (r *Registry) Register(name string, a Authenticator) {
	r.plugins[name] = a
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	names := maps.Keys(r.plugins)
	slices.Sort(names)
	return names
}

// Resolve picks the authenticator for a run.
//
// With an override, the plugin of that name is used ("basic" always names the default). Without
// one, a single registered plugin is used if there is exactly one, the default if there are none,
// and more than one is an error.
func (r *Registry) Resolve(override string) (Authenticator, error) {
	if override != "" {
		if a, ok := r.plugins[override]; ok {
			return a, nil
		}
		if override == DefaultAuthenticatorName {
			return BasicAuthenticator{}, nil
		}
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownAuthenticator, override, r.Names())
	}
	switch len(r.plugins) {
	case 0:
		return BasicAuthenticator{}, nil
	case 1:
		for _, a := range r.plugins {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %v; choose one with --auth-class", ErrAmbiguousAuthenticator, r.Names())
}
