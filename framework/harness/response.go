package harness

import (
	"net/http"
	"strings"

	"github.com/tomnomnom/linkheader"
)

// Response is a fully read HTTP response from the repository under test.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess returns true for any 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// BodyString returns the response body as text.
func (r *Response) BodyString() string {
	return string(r.Body)
}

// Location returns the Location header resolved against the request URL, or "" if there is none.
func (r *Response) Location() string {
	loc := r.Header.Get("Location")
	if loc == "" {
		return ""
	}
	return Resolve(r.URL, loc)
}

// RawLocation returns the Location header exactly as the server sent it.
func (r *Response) RawLocation() string {
	return r.Header.Get("Location")
}

// Links returns every link from all Link headers in the response.
func (r *Response) Links() linkheader.Links {
	return linkheader.ParseMultiple(r.Header.Values("Link"))
}

// LinksByRel returns the targets of all links with the given relation, resolved against the
// request URL.
func (r *Response) LinksByRel(rel string) []string {
	var ret []string
	for _, l := range r.Links().FilterByRel(rel) {
		ret = append(ret, Resolve(r.URL, l.URL))
	}
	return ret
}

// HasLink returns true if there is a link with the given relation and target.
func (r *Response) HasLink(rel, target string) bool {
	for _, l := range r.Links().FilterByRel(rel) {
		if l.URL == target {
			return true
		}
	}
	return false
}

// HasType returns true if the response declares the given rel="type" link.
func (r *Response) HasType(typeURI string) bool {
	return r.HasLink("type", typeURI)
}

// Allows returns true if the Allow header lists the method. Multiple Allow headers and
// comma-separated lists are both accepted.
func (r *Response) Allows(method string) bool {
	return headerListContains(r.Header.Values("Allow"), method)
}

// HeaderListContains returns true if any of the comma-separated values of the header equals
// token, ignoring case.
func (r *Response) HeaderListContains(name, token string) bool {
	return headerListContains(r.Header.Values(name), token)
}

func headerListContains(values []string, token string) bool {
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(item), token) {
				return true
			}
		}
	}
	return false
}
