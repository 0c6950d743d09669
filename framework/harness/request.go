package harness

import (
	"context"
	"net/http"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"
)

// DefaultUser is the user whose credentials are attached when a request does not choose one.
const DefaultUser = "root-controller"

// Request holds the parameters that RequestOptions build up for TestHarness.Send.
type Request struct {
	Header    http.Header
	Body      []byte
	User      string
	Anonymous bool
	Context   context.Context
}

// RequestOption is the vararg option type for TestHarness.Send.
type RequestOption = helpers.ConfigOption[Request]

type requestOptionFunc = helpers.ConfigOptionFunc[Request]

// Header adds a request header. It can be used more than once for the same name.
func Header(name, value string) RequestOption {
	return requestOptionFunc(func(r *Request) error {
		r.Header.Add(name, value)
		return nil
	})
}

// Body sets the request body and its Content-Type.
func Body(contentType string, body []byte) RequestOption {
	return requestOptionFunc(func(r *Request) error {
		r.Body = body
		if contentType != "" {
			r.Header.Set("Content-Type", contentType)
		}
		return nil
	})
}

// Turtle sets a text/turtle request body.
func Turtle(body string) RequestOption {
	return Body("text/turtle", []byte(body))
}

// SparqlUpdate sets an application/sparql-update request body.
func SparqlUpdate(body string) RequestOption {
	return Body("application/sparql-update", []byte(body))
}

// InteractionModel adds a Link header declaring the LDP type of the resource to be created.
func InteractionModel(typeURI string) RequestOption {
	return Header("Link", "<"+typeURI+">; rel=\"type\"")
}

// Slug suggests the last path segment of a resource to be created.
func Slug(slug string) RequestOption {
	return Header("Slug", slug)
}

// AsUser sends the request with the credentials configured for the named user.
func AsUser(user string) RequestOption {
	return requestOptionFunc(func(r *Request) error {
		r.User = user
		r.Anonymous = false
		return nil
	})
}

// Anonymous sends the request without any credentials.
func Anonymous() RequestOption {
	return requestOptionFunc(func(r *Request) error {
		r.Anonymous = true
		return nil
	})
}

// WithContext makes the request cancellable through ctx.
func WithContext(ctx context.Context) RequestOption {
	return requestOptionFunc(func(r *Request) error {
		r.Context = ctx
		return nil
	})
}
