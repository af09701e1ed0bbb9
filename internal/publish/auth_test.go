package publish

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"chefpress/internal/config"
)

func TestTokenStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "token.json")
	s := NewTokenStore(path)
	expiry := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(&oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: expiry}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))
}

func TestTokenStore_Missing(t *testing.T) {
	s := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

	_, err := s.Load()
	assert.True(t, errors.Is(err, ErrNoToken))

	_, err = s.Client(context.Background(), OAuthConfig(config.Blogger{}))
	assert.True(t, errors.Is(err, ErrNoToken))
}

func TestSavingSource_PersistsRefreshedToken(t *testing.T) {
	s := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	src := &savingSource{
		base:  oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "fresh", RefreshToken: "rt"}),
		store: s,
		last:  "stale",
	}

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	saved, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)

	// unchanged tokens are not rewritten
	require.NoError(t, os.Remove(s.path))
	_, err = src.Token()
	require.NoError(t, err)
	_, err = s.Load()
	assert.True(t, errors.Is(err, ErrNoToken))
}

func TestOAuthConfig(t *testing.T) {
	c := OAuthConfig(config.Blogger{ClientID: "id", ClientSecret: "secret"})

	assert.Equal(t, "id", c.ClientID)
	assert.Equal(t, "secret", c.ClientSecret)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/blogger"}, c.Scopes)
}

func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "at-1", "refresh_token": "rt-1", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/auth",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"blogger"},
	}
}

// consent simulates the browser following the consent URL back to the
// callback with the given code and state override.
func consent(t *testing.T, code, state string) func(string) {
	return func(authURL string) {
		u, err := url.Parse(authURL)
		if !assert.NoError(t, err) {
			return
		}
		q := u.Query()
		assert.Equal(t, "offline", q.Get("access_type"))
		if state == "" {
			state = q.Get("state")
		}
		cb := q.Get("redirect_uri") + "?" + url.Values{"code": {code}, "state": {state}}.Encode()
		go func() {
			resp, err := http.Get(cb)
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}
}

func TestAuthorize(t *testing.T) {
	srv := tokenServer(t)
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tok, err := Authorize(ctx, testOAuthConfig(srv.URL), store, consent(t, "the-code", ""))
	require.NoError(t, err)

	assert.Equal(t, "at-1", tok.AccessToken)
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "rt-1", saved.RefreshToken)
}

func TestAuthorize_StateMismatch(t *testing.T) {
	srv := tokenServer(t)
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := Authorize(ctx, testOAuthConfig(srv.URL), store, consent(t, "the-code", "forged"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
	_, err = store.Load()
	assert.True(t, errors.Is(err, ErrNoToken))
}

func TestAuthorize_Cancelled(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))
	ctx, cancel := context.WithCancel(context.Background())

	_, err := Authorize(ctx, testOAuthConfig("http://127.0.0.1:1/token"), store, func(string) { cancel() })

	assert.True(t, errors.Is(err, context.Canceled))
}
