package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"lifestyle-backend/config"
	"lifestyle-backend/middleware"
	"lifestyle-backend/services"
	"lifestyle-backend/supabase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	pkceCookieName    = "lsn-pkce"
	pkceCookieMaxAge  = 10 * 60
	defaultSessionAge = 60 * 60
	defaultNext       = "/onboarding"
)

type AuthHandler struct {
	Auth       supabase.AuthClient
	Onboarding *services.OnboardingService
	Config     *config.Config
	Logger     *zap.Logger
}

// safeNext returns next if it is a same-site relative path, else "".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return ""
	}
	return next
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.Config.CookieDomain(), !h.Config.IsDevelopment(), true)
}

// MagicLink emails a one-time sign-in link. The PKCE verifier stays in an
// HttpOnly cookie until the link is followed.
func (h *AuthHandler) MagicLink(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Next  string `json:"next"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	next := safeNext(req.Next)
	if next == "" {
		next = defaultNext
	}

	verifier, err := supabase.NewCodeVerifier()
	if err != nil {
		h.Logger.Error("failed to generate PKCE verifier", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}

	redirectTo := h.Config.AuthBase + "/auth/callback?next=" + url.QueryEscape(next)
	if err := h.Auth.SendMagicLink(c.Request.Context(), req.Email, redirectTo, supabase.CodeChallenge(verifier)); err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": apiErr.Message})
			return
		}
		h.Logger.Warn("magic link request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not send sign-in link. Please try again."})
		return
	}

	h.setCookie(c, pkceCookieName, verifier, pkceCookieMaxAge)
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Check your email for a sign-in link. It expires shortly."})
}

// Callback finishes sign-in: it exchanges the code for a session, stores it
// in the shared cookie and sends the user on.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/signin?error=missing_code")
		return
	}

	verifier, _ := c.Cookie(pkceCookieName)
	session, err := h.Auth.ExchangeCode(c.Request.Context(), code, verifier)
	if err != nil {
		msg := err.Error()
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Message
		}
		h.Logger.Warn("auth code exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/signin?error="+url.QueryEscape(msg))
		return
	}

	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = defaultSessionAge
	}
	h.setCookie(c, middleware.SessionCookieName, session.AccessToken, maxAge)
	h.setCookie(c, pkceCookieName, "", -1)

	if next := safeNext(c.Query("next")); next != "" && next != defaultNext {
		c.Redirect(http.StatusFound, next)
		return
	}
	c.Redirect(http.StatusFound, h.destination(c, session))
}

// destination sends onboarded users to their home tenant's wallet and
// everyone else to onboarding.
func (h *AuthHandler) destination(c *gin.Context, session *supabase.Session) string {
	ctx := c.Request.Context()
	rawID := session.User.ID
	if rawID == "" {
		// Some token responses omit the user; ask GoTrue who the token belongs to.
		user, err := h.Auth.GetUser(ctx, session.AccessToken)
		if err != nil {
			h.Logger.Warn("could not resolve user after sign-in", zap.Error(err))
			return defaultNext
		}
		rawID = user.ID
	}
	userID, err := parseUserID(rawID)
	if err != nil {
		return defaultNext
	}
	profile, err := h.Onboarding.GetProfile(ctx, userID)
	if err != nil || !profile.Onboarded() {
		return defaultNext
	}
	if _, err := h.Onboarding.EnsureWallet(ctx, userID); err != nil {
		h.Logger.Warn("could not ensure wallet at sign-in", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return h.Config.TenantURL(profile.PrimaryTenant.Slug, "/wallet")
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookieName, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SignIn sends signed-in users straight to their wallet.
func (h *AuthHandler) SignIn(c *gin.Context) {
	if _, _, ok := middleware.SessionUser(c); ok {
		c.Redirect(http.StatusFound, "/wallet")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authBase": h.Config.AuthBase})
}

// DebugAuth reports the non-secret parts of the auth configuration.
func (h *AuthHandler) DebugAuth(c *gin.Context) {
	supabaseURL := h.Config.SupabaseURL
	if len(supabaseURL) > 40 {
		supabaseURL = supabaseURL[:40] + "..."
	}
	authBase := h.Config.AuthBase
	if authBase == "" {
		authBase = "(unset)"
	}
	c.JSON(http.StatusOK, gin.H{
		"authBase":    authBase,
		"supabaseUrl": supabaseURL,
		"hasAnonKey":  h.Config.SupabaseAnonKey != "",
	})
}

func parseUserID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}
