package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	blogger "google.golang.org/api/blogger/v3"

	"chefpress/internal/config"
	"chefpress/internal/logger"
)

// ErrNoToken is returned when no OAuth token has been stored yet.
var ErrNoToken = errors.New("no blogger token stored, run `chefpress auth` first")

const callbackPath = "/callback"

// OAuthConfig builds the Blogger OAuth client configuration.
func OAuthConfig(cfg config.Blogger) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{blogger.BloggerScope},
	}
}

// TokenStore keeps an OAuth token in a JSON file.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

// NewTokenStore creates a store backed by path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the stored token.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file %s: %w", s.path, err)
	}
	return &tok, nil
}

// Save writes tok with owner-only permissions.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// TokenSource returns a source that refreshes through conf and writes every
// new token back to the store.
func (s *TokenStore) TokenSource(ctx context.Context, conf *oauth2.Config) (oauth2.TokenSource, error) {
	tok, err := s.Load()
	if err != nil {
		return nil, err
	}
	return &savingSource{
		base:  oauth2.ReuseTokenSource(tok, conf.TokenSource(ctx, tok)),
		store: s,
		last:  tok.AccessToken,
	}, nil
}

// Client returns an HTTP client authorised with the stored token.
func (s *TokenStore) Client(ctx context.Context, conf *oauth2.Config) (*http.Client, error) {
	src, err := s.TokenSource(ctx, conf)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, src), nil
}

type savingSource struct {
	base  oauth2.TokenSource
	store *TokenStore

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			// the refreshed token still works for this process
			logger.Warn("Failed to persist refreshed token", "error", err.Error())
		} else {
			logger.Debug("Refreshed token saved", "expiry", tok.Expiry.String())
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// Authorize runs the loopback consent flow: it serves a one-shot callback on
// 127.0.0.1, hands the consent URL to prompt, exchanges the returned code and
// saves the token.
func Authorize(ctx context.Context, conf *oauth2.Config, store *TokenStore, prompt func(authURL string)) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for oauth callback: %w", err)
	}

	c := *conf
	c.RedirectURL = fmt.Sprintf("http://%s%s", ln.Addr().String(), callbackPath)
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res result
		switch {
		case q.Get("state") != state:
			res.err = errors.New("oauth callback state mismatch")
		case q.Get("error") != "":
			res.err = fmt.Errorf("consent denied: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("oauth callback without code")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = fmt.Fprintln(w, "Authorization complete, you can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	prompt(c.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := c.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	if err := store.Save(tok); err != nil {
		return nil, err
	}
	logger.Info("Blogger token saved", "path", store.path)
	return tok, nil
}
