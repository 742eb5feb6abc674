package oidc

// Package oidc provides an OIDC-backed CredentialVerifier using the OAuth2
// resource-owner password grant.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
	"golang.org/x/oauth2"
)

const defaultUsernameClaim = "preferred_username"

// PasswordVerifier implements ports.CredentialVerifier against an OIDC identity provider.
// The provider must allow the password grant for the configured client.
type PasswordVerifier struct {
	config        *oauth2.Config
	httpClient    *http.Client
	usernameClaim string

	// go-oidc provider and verifier
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.CredentialVerifier = (*PasswordVerifier)(nil)

// VerifierConfig holds configuration for the OIDC verifier.
type VerifierConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	// UsernameClaim is a JMESPath expression evaluated over the token claims.
	// Defaults to preferred_username.
	UsernameClaim string
	HTTPClient    *http.Client // Optional, defaults to a client with a 30s timeout
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewPasswordVerifier performs discovery and returns a ready verifier.
func NewPasswordVerifier(ctx context.Context, config VerifierConfig) (*PasswordVerifier, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	claim := config.UsernameClaim
	if claim == "" {
		claim = defaultUsernameClaim
	}
	if _, err := jmespath.Compile(claim); err != nil {
		return nil, fmt.Errorf("invalid username claim expression %q: %w", claim, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &PasswordVerifier{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       strings.Fields(config.Scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient:    httpClient,
		usernameClaim: claim,
		oidcProvider:  op,
		verifier:      op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// Verify exchanges the credentials for tokens and checks that the identity the
// provider vouches for is exactly the username the caller supplied. Role policy
// is case-sensitive, so a spelling that differs only in case is rejected.
func (p *PasswordVerifier) Verify(ctx context.Context, creds domainauth.Credentials) error {
	if creds.Missing() {
		return domainauth.ErrCredentialsRejected
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.PasswordCredentialsToken(ctx, creds.Username, creds.Secret)
	if err != nil {
		if isGrantRejection(err) {
			return fmt.Errorf("%w: %v", domainauth.ErrCredentialsRejected, err)
		}
		return fmt.Errorf("password grant: %w", err)
	}

	claims, err := p.claims(ctx, token)
	if err != nil {
		return err
	}
	name, err := extractUsername(p.usernameClaim, claims)
	if err != nil {
		return err
	}
	if name != strings.TrimSpace(creds.Username) {
		return fmt.Errorf("%w: provider identity %q does not match", domainauth.ErrCredentialsRejected, name)
	}
	return nil
}

// claims reads the ID token when openid was requested and the userinfo endpoint otherwise.
func (p *PasswordVerifier) claims(ctx context.Context, tok *oauth2.Token) (map[string]any, error) {
	var claims map[string]any
	if p.hasOpenIDScope() {
		rawID, err := getIDTokenFromToken(tok)
		if err != nil {
			return nil, err
		}
		idTok, err := p.verifier.Verify(ctx, rawID)
		if err != nil {
			return nil, fmt.Errorf("verify id_token: %w", err)
		}
		if err := idTok.Claims(&claims); err != nil {
			return nil, fmt.Errorf("parse id_token claims: %w", err)
		}
		return claims, nil
	}
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	if err := ui.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return claims, nil
}

// isGrantRejection distinguishes "wrong password" from a provider outage.
func isGrantRejection(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	switch re.ErrorCode {
	case "invalid_grant", "invalid_request", "unauthorized_client":
		return true
	}
	if re.Response != nil {
		return re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized
	}
	return false
}

// extractUsername evaluates expr over claims and requires a non-empty string result.
func extractUsername(expr string, claims map[string]any) (string, error) {
	v, err := jmespath.Search(expr, claims)
	if err != nil {
		return "", fmt.Errorf("evaluate username claim: %w", err)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("username claim %q missing from token", expr)
	}
	return s, nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (p *PasswordVerifier) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
