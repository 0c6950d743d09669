package ldptests

import (
	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/harness"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

// The functions in this file are for convenient use of the matchers API with *harness.Response.

func StatusCode() m.MatcherTransform {
	return m.Transform("status code", func(value interface{}) (interface{}, error) {
		return value.(*harness.Response).StatusCode, nil
	}).EnsureInputValueType(&harness.Response{})
}

func HeaderValue(name string) m.MatcherTransform {
	return m.Transform("header "+name, func(value interface{}) (interface{}, error) {
		return value.(*harness.Response).Header.Get(name), nil
	}).EnsureInputValueType(&harness.Response{})
}

func ResponseBody() m.MatcherTransform {
	return m.Transform("response body", func(value interface{}) (interface{}, error) {
		return value.(*harness.Response).BodyString(), nil
	}).EnsureInputValueType(&harness.Response{})
}

// HasStatus matches any of the given status codes.
func HasStatus(statuses ...int) m.Matcher {
	matchers := make([]m.Matcher, 0, len(statuses))
	for _, s := range statuses {
		matchers = append(matchers, m.Equal(s))
	}
	return StatusCode().Should(m.AnyOf(matchers...))
}

// IsSuccessful matches any 2xx status.
func IsSuccessful() m.Matcher {
	return m.Transform("2xx status", func(value interface{}) (interface{}, error) {
		return value.(*harness.Response).IsSuccess(), nil
	}).EnsureInputValueType(&harness.Response{}).Should(m.Equal(true))
}

// HasHeader matches a response in which the header is present and not empty.
func HasHeader(name string) m.Matcher {
	return HeaderValue(name).Should(m.Not(m.Equal("")))
}

// HasLinkRel matches a response with at least one link of the given relation.
func HasLinkRel(rel string) m.Matcher {
	return m.Transform("number of links with rel="+rel, func(value interface{}) (interface{}, error) {
		return len(value.(*harness.Response).LinksByRel(rel)), nil
	}).EnsureInputValueType(&harness.Response{}).Should(m.Not(m.Equal(0)))
}

// HasType matches a response declaring the given rel="type" link.
func HasType(typeURI string) m.Matcher {
	return m.Transform("has type "+typeURI, func(value interface{}) (interface{}, error) {
		return value.(*harness.Response).HasType(typeURI), nil
	}).EnsureInputValueType(&harness.Response{}).Should(m.Equal(true))
}

// AllowsMethod matches a response whose Allow header lists the method.
func AllowsMethod(method string) m.Matcher {
	return m.Transform("Allow header includes "+method, func(value interface{}) (interface{}, error) {
		return value.(*harness.Response).Allows(method), nil
	}).EnsureInputValueType(&harness.Response{}).Should(m.Equal(true))
}

// HeaderListIncludes matches a response whose comma-separated header includes token.
func HeaderListIncludes(name, token string) m.Matcher {
	return m.Transform("header "+name+" includes "+token, func(value interface{}) (interface{}, error) {
		return value.(*harness.Response).HeaderListContains(name, token), nil
	}).EnsureInputValueType(&harness.Response{}).Should(m.Equal(true))
}
