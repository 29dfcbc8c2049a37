package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/ticketlab/gatehouse/internal/service"
)

// Engine is the slice of the session service the HTTP layer consumes.
type Engine interface {
	Snapshot() service.Snapshot
	CanAccess(perms []string, roles []string) bool
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireReady returns a middleware that holds traffic while the engine
// is still restoring the persisted session. It answers 503 with a
// Retry-After hint and never redirects, so clients poll a neutral
// waiting state instead of bouncing through login pages.
func RequireReady(engine Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := engine.Snapshot()
			if snap.State == service.StateInitializing {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "initializing",
					Err:     errors.New("session engine is starting up"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCustomer returns a middleware guarding customer-protected
// resources. Browser requests are redirected to the login page with the
// requested location preserved; API requests get 401 JSON.
func RequireCustomer(engine Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := engine.Snapshot()
			if !snap.IsAuthenticated {
				denyUnauthenticated(w, r, "/login")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns a middleware guarding admin resources. An
// unauthenticated visitor is sent to the admin login page; an
// authenticated customer is sent to the public landing page rather
// than the admin login, which would loop.
func RequireAdmin(engine Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := engine.Snapshot()
			switch {
			case snap.IsAdmin:
				next.ServeHTTP(w, r)
			case snap.IsAuthenticated:
				if IsBrowserRequest(r) {
					http.Redirect(w, r, "/", http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "admin_required",
					Err:     errors.New("administrator session required"),
				})
			default:
				denyUnauthenticated(w, r, "/admin/login")
			}
		})
	}
}

// AccessDeclaration states what a route demands of the current
// administrator: all listed permissions, and at least one of the listed
// roles when any are given.
type AccessDeclaration struct {
	Permissions []string
	Roles       []string
}

// RequireAccess returns a middleware enforcing a route's access
// declaration against the current administrator. A shortfall sends
// browsers back to the admin dashboard instead of an error page.
func RequireAccess(engine Engine, decl AccessDeclaration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !engine.CanAccess(decl.Permissions, decl.Roles) {
				if IsBrowserRequest(r) {
					http.Redirect(w, r, "/admin", http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsBrowserRequest(r) {
		redirectParam := url.QueryEscape(safeRedirectPath(r.URL.RequestURI()))
		http.Redirect(w, r, loginPath+"?redirect_uri="+redirectParam, http.StatusSeeOther)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

// IsBrowserRequest determines if a request is from a browser based on
// the path prefix and Accept header. API routes are always JSON.
func IsBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}

	accept := r.Header.Get("Accept")
	if accept == "" {
		// No Accept header, assume browser for non-API routes
		return true
	}

	return strings.Contains(accept, "text/html")
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
