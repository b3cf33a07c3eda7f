package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inari-web/internal/auth"
	"inari-web/internal/config"
)

type loginPage struct {
	Page
	OIDC     bool
	Next     string
	Username string
	Error    string
}

func (h *Handler) loginPage(c *gin.Context, status int, username, message string) {
	c.HTML(status, "login", loginPage{
		Page:     h.page(c, "Sign in", ""),
		OIDC:     h.gate.Provider() == config.AuthProviderOIDC,
		Next:     auth.SafeNext(c.Query("next")),
		Username: username,
		Error:    message,
	})
}

// LoginPage shows the login form, or starts the OIDC flow with ?start=1
func (h *Handler) LoginPage(c *gin.Context) {
	if !h.gate.Enabled() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if _, err := h.gate.Session(c); err == nil {
		c.Redirect(http.StatusFound, auth.SafeNext(c.Query("next")))
		return
	}

	if h.gate.OIDC != nil && c.Query("start") != "" {
		state := h.gate.NewState(c)
		c.SetCookie("inari_next", auth.SafeNext(c.Query("next")), 600, "/", "", false, true)
		c.Redirect(http.StatusFound, h.gate.OIDC.AuthCodeURL(state))
		return
	}

	h.loginPage(c, http.StatusOK, "", "")
}

// Login checks the local credentials posted by the login form
func (h *Handler) Login(c *gin.Context) {
	if h.gate.Local == nil {
		h.renderError(c, http.StatusNotFound, "Password sign in is not enabled.")
		return
	}

	username := c.PostForm("username")
	identity, err := h.gate.Local.Authenticate(username, c.PostForm("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.logger.Info("failed sign in", zap.String("username", username), zap.String("clientIP", c.ClientIP()))
		h.loginPage(c, http.StatusUnauthorized, username, "Invalid username or password.")
		return
	}
	if err != nil {
		h.logger.Error("failed to sign in", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Could not sign in.")
		return
	}

	if err := h.gate.StartSession(c, identity); err != nil {
		h.logger.Error("failed to start session", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Could not sign in.")
		return
	}
	c.Redirect(http.StatusSeeOther, auth.SafeNext(c.PostForm("next")))
}

// Callback completes the OIDC authorization code flow
func (h *Handler) Callback(c *gin.Context) {
	if h.gate.OIDC == nil {
		h.renderError(c, http.StatusNotFound, "Single sign on is not enabled.")
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warn("identity provider returned an error",
			zap.String("error", errParam),
			zap.String("description", c.Query("error_description")),
		)
		h.renderError(c, http.StatusUnauthorized, "Sign in was refused.")
		return
	}

	if !h.gate.CheckState(c, c.Query("state")) {
		h.renderError(c, http.StatusBadRequest, "Sign in expired, please try again.")
		return
	}

	identity, err := h.gate.OIDC.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Warn("failed to complete sign in", zap.Error(err))
		h.renderError(c, http.StatusUnauthorized, "Could not sign in.")
		return
	}

	if err := h.gate.StartSession(c, identity); err != nil {
		h.logger.Error("failed to start session", zap.Error(err))
		h.renderError(c, http.StatusInternalServerError, "Could not sign in.")
		return
	}

	next, _ := c.Cookie("inari_next")
	c.SetCookie("inari_next", "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, auth.SafeNext(next))
}

// Logout ends the session
func (h *Handler) Logout(c *gin.Context) {
	h.gate.EndSession(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
