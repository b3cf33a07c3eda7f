package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"inari-web/internal/config"
)

// OIDCProvider runs the authorization code flow against an Auth0 style
// tenant and verifies the returned ID token with the tenant JWKS.
type OIDCProvider struct {
	oauth    *oauth2.Config
	issuer   string
	clientID string
	audience string
	keyfunc  jwt.Keyfunc
	jwks     *keyfunc.JWKS
}

// NewOIDCProvider fetches the JWKS of the tenant and keeps it refreshed in
// the background until Close.
func NewOIDCProvider(cfg config.OIDCConfig, logger *zap.Logger) (*OIDCProvider, error) {
	base := tenantURL(cfg.Domain)

	jwks, err := keyfunc.Get(base+"/.well-known/jwks.json", keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to refresh JWKS", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}

	p := newOIDCProvider(cfg, jwks.Keyfunc)
	p.jwks = jwks
	return p, nil
}

func newOIDCProvider(cfg config.OIDCConfig, kf jwt.Keyfunc) *OIDCProvider {
	base := tenantURL(cfg.Domain)
	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/authorize",
				TokenURL: base + "/oauth/token",
			},
		},
		issuer:   base + "/",
		clientID: cfg.ClientID,
		audience: cfg.Audience,
		keyfunc:  kf,
	}
}

func tenantURL(domain string) string {
	domain = strings.TrimRight(domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// AuthCodeURL is where the browser is sent to sign in
func (p *OIDCProvider) AuthCodeURL(state string) string {
	var opts []oauth2.AuthCodeOption
	if p.audience != "" {
		opts = append(opts, oauth2.SetAuthURLParam("audience", p.audience))
	}
	return p.oauth.AuthCodeURL(state, opts...)
}

// Exchange trades the callback code for tokens. The API bearer token is the
// access token when an audience is configured, the ID token otherwise.
func (p *OIDCProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return Identity{}, errors.New("token response has no id_token")
	}

	claims, err := p.VerifyIDToken(rawIDToken)
	if err != nil {
		return Identity{}, err
	}

	identity := Identity{
		Subject: claims.Subject,
		Token:   rawIDToken,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	if p.audience != "" {
		identity.Token = token.AccessToken
		if !token.Expiry.IsZero() {
			identity.ExpiresAt = token.Expiry
		}
	}
	return identity, nil
}

// VerifyIDToken checks signature, issuer, audience and expiry
func (p *OIDCProvider) VerifyIDToken(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, p.keyfunc); err != nil {
		return nil, fmt.Errorf("invalid id token: %w", err)
	}
	if !claims.VerifyIssuer(p.issuer, true) {
		return nil, fmt.Errorf("invalid id token: unexpected issuer %q", claims.Issuer)
	}
	if !claims.VerifyAudience(p.clientID, true) {
		return nil, errors.New("invalid id token: unexpected audience")
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid id token: missing subject")
	}
	return claims, nil
}

// Close stops the background JWKS refresh
func (p *OIDCProvider) Close() {
	if p.jwks != nil {
		p.jwks.EndBackground()
	}
}
