package identity

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
)

// DefaultAppleIssuer is Apple's OIDC issuer, used for discovery.
const DefaultAppleIssuer = "https://appleid.apple.com"

// AppleVerifier verifies Sign in with Apple identity tokens against Apple's
// published JWKS via OIDC discovery.
type AppleVerifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauthCfg *oauth2.Config
}

type AppleOption func(*AppleVerifier)

// WithClientSecret enables the authorization-code exchange variant used by the
// web flow. Mobile clients submit the identity token directly and do not need it.
func WithClientSecret(clientSecret, redirectURL string) AppleOption {
	return func(v *AppleVerifier) {
		v.oauthCfg.ClientSecret = clientSecret
		v.oauthCfg.RedirectURL = redirectURL
	}
}

// NewAppleVerifier discovers Apple's OIDC configuration and builds a verifier
// bound to clientID (the app's bundle or service identifier).
func NewAppleVerifier(ctx context.Context, issuerURL, clientID string, options ...AppleOption) (*AppleVerifier, error) {
	if issuerURL == "" {
		issuerURL = DefaultAppleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "NewAppleVerifier oidc.NewProvider")
	}

	v := &AppleVerifier{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		oauthCfg: &oauth2.Config{
			ClientID: clientID,
			Endpoint: provider.Endpoint(),
			Scopes:   []string{oidc.ScopeOpenID, "email", "name"},
		},
	}
	for _, opt := range options {
		opt(v)
	}
	return v, nil
}

var (
	_ Verifier     = (*AppleVerifier)(nil)
	_ CodeVerifier = (*AppleVerifier)(nil)
)

// Verify checks the identity token's signature, issuer, audience and expiry
// and returns the verified subject.
func (v *AppleVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrOAuthProcessing, "apple id token rejected: %v", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrOAuthProcessing, "apple id token claims: %v", err)
	}

	return &Identity{
		SubjectID: idToken.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
	}, nil
}

// VerifyAuthorizationCode exchanges code for tokens and verifies the returned
// identity token. Used by the web flow where the client never sees the token.
func (v *AppleVerifier) VerifyAuthorizationCode(ctx context.Context, code string) (*Identity, error) {
	oauth2Token, err := v.oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrOAuthProcessing, "apple code exchange: %v", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrOAuthProcessing, "no id_token in apple token response")
	}
	return v.Verify(ctx, rawIDToken)
}
