package session

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrEmptyToken   = errors.New("empty token")
	ErrNoTokenURL   = errors.New("identity provider token URL is not configured")
	ErrEnvSession   = errors.New("session comes from TADA_TOKEN (nothing to sign out)")
	ErrInvalidLogin = errors.New("username and password are required")
)

// ProviderConfig describes the OAuth2 identity provider.
type ProviderConfig struct {
	AuthURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Provider signs users in against the identity provider. Login UI and
// credential errors belong to the provider; they are returned unchanged.
type Provider struct {
	conf *oauth2.Config
}

func NewProvider(pc ProviderConfig) *Provider {
	return &Provider{conf: &oauth2.Config{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		Scopes:       pc.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  pc.AuthURL,
			TokenURL: pc.TokenURL,
		},
	}}
}

// PasswordLogin runs the resource owner password grant.
func (p *Provider) PasswordLogin(ctx context.Context, username, password string) (*oauth2.Token, error) {
	if p.conf.Endpoint.TokenURL == "" {
		return nil, ErrNoTokenURL
	}
	if username == "" || password == "" {
		return nil, ErrInvalidLogin
	}

	tok, err := p.conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return tok, nil
}

// TokenSource refreshes tok through the provider when it expires. Without a
// token URL the token is used as-is.
func (p *Provider) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	if p.conf.Endpoint.TokenURL == "" || tok.RefreshToken == "" {
		return oauth2.StaticTokenSource(tok)
	}
	return p.conf.TokenSource(ctx, tok)
}

// idToken pulls the OpenID id_token out of a token response, if any.
func idToken(tok *oauth2.Token) string {
	if tok == nil {
		return ""
	}
	if s, ok := tok.Extra("id_token").(string); ok {
		return s
	}
	return ""
}
