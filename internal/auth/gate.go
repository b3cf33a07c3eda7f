// Package auth signs users in, keeps their browser sessions and gates the
// web routes.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"inari-web/internal/apiclient"
	"inari-web/internal/config"
	"inari-web/internal/models"
)

const (
	// DevSubject is the user every request runs as without a provider
	DevSubject = "dev"

	stateCookie = "inari_oauth_state"
)

// CookieSettings controls the session cookie
type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Gate owns session cookies and the middleware that requires them
type Gate struct {
	provider string
	store    SessionStore
	cookie   CookieSettings
	Local    *LocalProvider
	OIDC     *OIDCProvider
	logger   *zap.Logger
	now      func() time.Time
}

// NewGate creates a gate for the provider name (none, local or oidc)
func NewGate(provider string, store SessionStore, cookie CookieSettings, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		provider: provider,
		store:    store,
		cookie:   cookie,
		logger:   logger,
		now:      time.Now,
	}
}

func (g *Gate) Provider() string { return g.provider }

// Enabled is false when every request runs as DevSubject
func (g *Gate) Enabled() bool { return g.provider != config.AuthProviderNone }

type subjectCtxKey struct{}

// WithSubject attaches the signed in subject to ctx
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectCtxKey{}, subject)
}

// SubjectFrom returns the signed in subject attached to ctx
func SubjectFrom(ctx context.Context) string {
	subject, _ := ctx.Value(subjectCtxKey{}).(string)
	return subject
}

// Subject returns the subject the middleware stored on c
func Subject(c *gin.Context) string {
	return SubjectFrom(c.Request.Context())
}

// Middleware requires a live session. Browsers are redirected to /login,
// websocket and JSON clients get 401.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Enabled() {
			g.attach(c, DevSubject, "")
			c.Next()
			return
		}

		session, err := g.Session(c)
		if err != nil {
			g.reject(c)
			return
		}

		g.attach(c, session.Subject, session.Token)
		c.Next()
	}
}

// Session loads the live session of the request. Expired sessions are
// deleted and reported as missing.
func (g *Gate) Session(c *gin.Context) (models.Session, error) {
	id, err := c.Cookie(g.cookie.Name)
	if err != nil || id == "" {
		return models.Session{}, ErrSessionNotFound
	}

	ctx := c.Request.Context()
	session, err := g.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			g.logger.Error("failed to load session", zap.Error(err))
		}
		return models.Session{}, ErrSessionNotFound
	}

	if session.Expired(g.now()) {
		if err := g.store.Delete(ctx, id); err != nil {
			g.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return models.Session{}, ErrSessionNotFound
	}

	// local tokens stop working once the signing secret changes
	if g.Local != nil && session.Token != "" {
		subject, err := g.Local.ParseToken(session.Token)
		if err != nil || subject != session.Subject {
			g.logger.Info("dropping session with invalid token", zap.String("subject", session.Subject), zap.Error(err))
			if err := g.store.Delete(ctx, id); err != nil {
				g.logger.Warn("failed to delete session", zap.Error(err))
			}
			return models.Session{}, ErrSessionNotFound
		}
	}
	return session, nil
}

func (g *Gate) attach(c *gin.Context, subject, token string) {
	ctx := WithSubject(c.Request.Context(), subject)
	if token != "" {
		ctx = apiclient.WithToken(ctx, token)
	}
	c.Request = c.Request.WithContext(ctx)
}

func (g *Gate) reject(c *gin.Context) {
	if wantsJSON(c.Request) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// StartSession stores identity under a new session id and sets the cookie
func (g *Gate) StartSession(c *gin.Context, identity Identity) error {
	now := g.now()
	expiresAt := now.Add(g.cookie.TTL)
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(expiresAt) {
		expiresAt = identity.ExpiresAt
	}

	session := models.Session{
		ID:        uuid.NewString(),
		Subject:   identity.Subject,
		Token:     identity.Token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := g.store.Create(c.Request.Context(), session); err != nil {
		return err
	}

	g.setCookie(c, g.cookie.Name, session.ID, int(expiresAt.Sub(now).Seconds()))
	g.logger.Info("session started", zap.String("subject", session.Subject))
	return nil
}

// EndSession deletes the session of the request and clears the cookie
func (g *Gate) EndSession(c *gin.Context) {
	if id, err := c.Cookie(g.cookie.Name); err == nil && id != "" {
		if err := g.store.Delete(c.Request.Context(), id); err != nil {
			g.logger.Warn("failed to delete session", zap.Error(err))
		}
	}
	g.setCookie(c, g.cookie.Name, "", -1)
}

// NewState sets a fresh OAuth state cookie and returns its value
func (g *Gate) NewState(c *gin.Context) string {
	state := uuid.NewString()
	g.setCookie(c, stateCookie, state, int((10 * time.Minute).Seconds()))
	return state
}

// CheckState compares the callback state with the cookie and clears it
func (g *Gate) CheckState(c *gin.Context, state string) bool {
	expected, err := c.Cookie(stateCookie)
	g.setCookie(c, stateCookie, "", -1)
	return err == nil && expected != "" && expected == state
}

func (g *Gate) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", g.cookie.Secure, true)
}

// Janitor deletes expired sessions every interval until ctx is done
func (g *Gate) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := g.store.DeleteExpired(ctx, g.now())
			if err != nil {
				g.logger.Warn("failed to purge sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				g.logger.Debug("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}

// SafeNext keeps post-login redirects on this site
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
