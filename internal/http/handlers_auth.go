package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ticketlab/gatehouse/internal/ports"
	"github.com/ticketlab/gatehouse/internal/service"
)

// AuthEngineInterface defines the engine operations the auth handlers drive.
type AuthEngineInterface interface {
	Engine
	Login(ctx context.Context, creds ports.Credentials) error
	Register(ctx context.Context, reg ports.Registration) error
	Logout(ctx context.Context) error
	AdminLogin(ctx context.Context, creds ports.Credentials) error
	AdminLogout(ctx context.Context) error
	BeginAdminSSO(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error)
	AdminLoginSSO(ctx context.Context, in ports.SSOExchangeInput) error
	ClearError()
}

// AuthHandlers provides HTTP handlers for session and login operations.
type AuthHandlers struct {
	Engine       AuthEngineInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registrationRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Session returns the current engine snapshot.
// GET /api/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, snapshotPayload(h.Engine.Snapshot()))
}

// ClearError clears the published error message.
// POST /api/session/clear-error.
func (h *AuthHandlers) ClearError(w http.ResponseWriter, _ *http.Request) {
	h.Engine.ClearError()
	WriteJSON(w, http.StatusOK, snapshotPayload(h.Engine.Snapshot()))
}

// Login handles a customer login attempt.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Engine.Login(r.Context(), ports.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshotPayload(h.Engine.Snapshot()))
}

// Register handles customer account creation.
// POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	reg := ports.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if err := h.Engine.Register(r.Context(), reg); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, snapshotPayload(h.Engine.Snapshot()))
}

// Logout ends the customer session. Logout is idempotent; an already
// signed-out caller still gets a 200 with the current snapshot.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Logout(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "customer logout failed", "error", err)
	}
	WriteJSON(w, http.StatusOK, snapshotPayload(h.Engine.Snapshot()))
}

// AdminLogin handles an administrator login attempt.
// POST /api/admin/auth/login.
func (h *AuthHandlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Engine.AdminLogin(r.Context(), ports.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshotPayload(h.Engine.Snapshot()))
}

// AdminLogout ends the administrator session.
// POST /api/admin/auth/logout.
func (h *AuthHandlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.AdminLogout(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "admin logout failed", "error", err)
	}
	WriteJSON(w, http.StatusOK, snapshotPayload(h.Engine.Snapshot()))
}

// BeginSSO starts the admin single sign-on flow.
// GET /admin/sso/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) BeginSSO(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	if redirectURI == "/" {
		redirectURI = "/admin"
	}

	authURL, state, nonce, err := h.Engine.BeginAdminSSO(r.Context(), redirectURI)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setSSOCookies(w, r, ssoCookieParams{State: state, Nonce: nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// SSOCallback completes the admin single sign-on flow.
// GET /admin/sso/callback?code=<code>&state=<state>.
func (h *AuthHandlers) SSOCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie("sso_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("sso_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	loginErr := h.Engine.AdminLoginSSO(r.Context(), ports.SSOExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})

	h.clearCookie(w, r, "sso_state")
	h.clearCookie(w, r, "sso_nonce")

	if loginErr != nil {
		WriteAppError(w, loginErr)
		return
	}

	redirectURI := h.getPostLoginRedirect(w, r)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// snapshotPayload renders a snapshot as a JSON-friendly document. The
// principal travels with its kind discriminator so clients never have
// to guess the shape.
func snapshotPayload(snap service.Snapshot) map[string]any {
	payload := map[string]any{
		"state":            string(snap.State),
		"is_authenticated": snap.IsAuthenticated,
		"is_admin":         snap.IsAdmin,
		"is_loading":       snap.IsLoading,
	}
	if snap.Error != "" {
		payload["error"] = snap.Error
	}
	if snap.Principal != nil {
		payload["principal"] = map[string]any{
			"kind":    string(snap.Principal.PrincipalKind()),
			"profile": snap.Principal,
		}
	}
	return payload
}

// ssoCookieParams groups values needed to set SSO cookies (≤3 params rule).
type ssoCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setSSOCookies stores SSO state, nonce, and the post-login redirect in secure cookies.
func (h *AuthHandlers) setSSOCookies(w http.ResponseWriter, r *http.Request, p ssoCookieParams) {
	isSecure := requestIsSecure(r)
	for _, c := range []struct{ name, value string }{
		{"sso_state", p.State},
		{"sso_nonce", p.Nonce},
		{"sso_redirect", p.RedirectURI},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    c.value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// clearCookie clears a cookie by setting it to expire immediately.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/admin"
	if redirectCookie, err := r.Cookie("sso_redirect"); err == nil {
		candidate := redirectCookie.Value
		u, parseErr := url.Parse(candidate)
		if parseErr == nil && !u.IsAbs() && u.Host == "" && strings.HasPrefix(u.Path, "/") {
			redirectURI = candidate
		}
		h.clearCookie(w, r, "sso_redirect")
	}
	return redirectURI
}

func requestIsSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
