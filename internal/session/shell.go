// Package session gates the app behind a signed-in user.
//
// Credentials come from the TADA_TOKEN environment variable when set, and
// otherwise from the bbolt session store filled by SignIn. Refreshed tokens
// are written back to the store.
package session

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const EnvToken = "TADA_TOKEN"

// Source tells where the current credentials came from.
type Source string

const (
	SourceEnv   Source = "env"
	SourceStore Source = "store"
)

// Session is what the shell hands to its child: the user, a token source for
// the backend, and a sign-out action.
type Session struct {
	User        User
	Source      Source
	TokenSource oauth2.TokenSource
	CreatedAt   time.Time

	SignOut func()
}

type Shell struct {
	store    *Store
	provider *Provider
	logger   *slog.Logger
	getenv   func(string) string

	// onSignOut runs after a successful SignOut, e.g. to quit the TUI.
	onSignOut func()
}

func NewShell(store *Store, provider *Provider, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{
		store:    store,
		provider: provider,
		logger:   logger,
		getenv:   os.Getenv,
	}
}

// OnSignOut registers f to run whenever the session is signed out.
func (s *Shell) OnSignOut(f func()) { s.onSignOut = f }

// Current returns the active session or ErrNotSignedIn.
func (s *Shell) Current(ctx context.Context) (*Session, error) {
	if raw := stripBearer(s.getenv(EnvToken)); raw != "" {
		sess := &Session{
			User:        UserFromToken(raw, ""),
			Source:      SourceEnv,
			TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: raw}),
		}
		sess.SignOut = s.signOutFunc()
		return sess, nil
	}

	c, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if c == nil || c.Token == nil || c.Token.AccessToken == "" {
		return nil, ErrNotSignedIn
	}

	claimsFrom := c.IDToken
	if claimsFrom == "" {
		claimsFrom = c.Token.AccessToken
	}

	sess := &Session{
		User:      UserFromToken(claimsFrom, c.Username),
		Source:    SourceStore,
		CreatedAt: c.CreatedAt,
		TokenSource: &persistingSource{
			base:  oauth2.ReuseTokenSource(c.Token, s.provider.TokenSource(ctx, c.Token)),
			store: s.store,
			creds: *c,
			log:   s.logger,
		},
	}
	sess.SignOut = s.signOutFunc()
	return sess, nil
}

// Run calls child with the session only when one exists.
func (s *Shell) Run(ctx context.Context, child func(*Session) error) error {
	sess, err := s.Current(ctx)
	if err != nil {
		return err
	}
	return child(sess)
}

// SignIn signs in with a username and password through the provider.
func (s *Shell) SignIn(ctx context.Context, username, password string) (*Session, error) {
	tok, err := s.provider.PasswordLogin(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(Credentials{Token: tok, IDToken: idToken(tok), Username: username}); err != nil {
		return nil, err
	}
	s.logger.Info("signed in", "username", username)
	return s.Current(ctx)
}

// SignInToken stores a token obtained out of band (pasted by the user).
func (s *Shell) SignInToken(ctx context.Context, raw string, expires *time.Time) (*Session, error) {
	raw = stripBearer(raw)
	if raw == "" {
		return nil, ErrEmptyToken
	}

	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if expires != nil {
		tok.Expiry = *expires
	} else if u := UserFromToken(raw, ""); u.ExpiresAt != nil {
		tok.Expiry = *u.ExpiresAt
	}

	if err := s.store.Save(Credentials{Token: tok}); err != nil {
		return nil, err
	}
	return s.Current(ctx)
}

// SignOut deletes the stored credentials. A session that comes from the
// environment cannot be signed out here.
func (s *Shell) SignOut() error {
	if stripBearer(s.getenv(EnvToken)) != "" {
		return ErrEnvSession
	}
	if err := s.store.Delete(); err != nil {
		return err
	}
	s.logger.Info("signed out")
	if s.onSignOut != nil {
		s.onSignOut()
	}
	return nil
}

func (s *Shell) signOutFunc() func() {
	return func() {
		if err := s.SignOut(); err != nil {
			s.logger.Warn("sign out", "error", err)
		}
	}
}

// persistingSource saves refreshed tokens back to the store.
type persistingSource struct {
	base  oauth2.TokenSource
	store *Store
	log   *slog.Logger

	mu    sync.Mutex
	creds Credentials
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.creds.Token == nil || tok.AccessToken != p.creds.Token.AccessToken {
		p.creds.Token = tok
		if id := idToken(tok); id != "" {
			p.creds.IDToken = id
		}
		if err := p.store.Save(p.creds); err != nil {
			p.log.Warn("persist refreshed token", "error", err)
		}
	}
	return tok, nil
}
