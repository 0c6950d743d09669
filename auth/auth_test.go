package auth

import (
	"net/http"
	"testing"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/opt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorizationFor(t *testing.T, a Authenticator, user User) string {
	token, err := a.CreateAuthToken(user)
	require.NoError(t, err)
	req, _ := http.NewRequest("GET", "http://localhost:8080/rest", nil)
	return token.AddAuthInfo(req).Header.Get("Authorization")
}

func TestBasicAuthenticator(t *testing.T) {
	user := User{WebID: "http://example.org/admin", Name: "admin", Password: opt.Some("pw")}
	assert.Equal(t, "Basic YWRtaW46cHc=", authorizationFor(t, BasicAuthenticator{}, user))

	user.AuthHeader = opt.Some("Bearer abc")
	assert.Equal(t, "Bearer abc", authorizationFor(t, BasicAuthenticator{}, user))

	_, err := BasicAuthenticator{}.CreateAuthToken(User{WebID: "http://example.org/x"})
	assert.Error(t, err)
}

func TestBearerAuthenticator(t *testing.T) {
	assert.Equal(t, "Bearer xyz", authorizationFor(t, BearerAuthenticator{Token: "xyz"}, User{Name: "admin"}))
	_, err := BearerAuthenticator{}.CreateAuthToken(User{Name: "admin"})
	assert.Error(t, err)
}

func TestResolveWithNoPluginsUsesDefault(t *testing.T) {
	a, err := NewRegistry().Resolve("")
	require.NoError(t, err)
	assert.Equal(t, BasicAuthenticator{}, a)
}

func TestResolveWithOnePluginUsesIt(t *testing.T) {
	r := NewRegistry()
	r.Register("bearer", BearerAuthenticator{Token: "t"})
	a, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, BearerAuthenticator{Token: "t"}, a)
}

func TestResolveWithSeveralPluginsNeedsOverride(t *testing.T) {
	r := NewRegistry()
	r.Register("bearer", BearerAuthenticator{Token: "t"})
	r.Register("custom", AuthenticatorFunc(func(User) (AuthenticationToken, error) { return HeaderToken("x"), nil }))

	_, err := r.Resolve("")
	assert.ErrorIs(t, err, ErrAmbiguousAuthenticator)

	a, err := r.Resolve("bearer")
	require.NoError(t, err)
	assert.Equal(t, BearerAuthenticator{Token: "t"}, a)

	a, err = r.Resolve(DefaultAuthenticatorName)
	require.NoError(t, err)
	assert.Equal(t, BasicAuthenticator{}, a)

	_, err = r.Resolve("kerberos")
	assert.ErrorIs(t, err, ErrUnknownAuthenticator)
}

func TestRegistryNamesAreSorted(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())
	r.Register("token", BearerAuthenticator{Token: "t"})
	r.Register("bearer", BearerAuthenticator{Token: "t"})
	r.Register("oauth", BearerAuthenticator{Token: "t"})
	assert.Equal(t, []string{"bearer", "oauth", "token"}, r.Names())
}
