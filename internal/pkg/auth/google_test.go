package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleProvider_Exchange(t *testing.T) {
	srv := newFakeGoogle(t, `{"sub":"1","email":"Asha@College.edu","email_verified":true,"name":"Asha"}`)
	p := NewGoogleProvider(GoogleConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/auth/callback",
		Endpoint:     &oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL:  srv.URL + "/userinfo",
	})

	user, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "asha@college.edu", user.Email)
	assert.Equal(t, "Asha", user.Name)
}

func TestGoogleProvider_ExchangeWithoutEmail(t *testing.T) {
	srv := newFakeGoogle(t, `{"sub":"1"}`)
	p := NewGoogleProvider(GoogleConfig{
		Endpoint:    &oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL: srv.URL + "/userinfo",
	})

	_, err := p.Exchange(context.Background(), "good-code")
	assert.Error(t, err)
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{ClientID: "id", RedirectURL: "http://localhost/cb"})

	u, err := url.Parse(p.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "id", u.Query().Get("client_id"))
	assert.Equal(t, "select_account", u.Query().Get("prompt"))
}

func TestEmailInDomain(t *testing.T) {
	assert.True(t, EmailInDomain("a@college.edu", ""))
	assert.True(t, EmailInDomain("a@College.EDU", "college.edu"))
	assert.True(t, EmailInDomain("a@college.edu", "@college.edu"))
	assert.False(t, EmailInDomain("a@gmail.com", "college.edu"))
	assert.False(t, EmailInDomain("nobody", "college.edu"))
}
