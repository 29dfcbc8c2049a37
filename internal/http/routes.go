package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Engine       AuthEngineInterface
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router. Every route except
// the health check waits behind the readiness guard; admin resources
// additionally demand an administrator session and, where declared, a
// permission check.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Engine:       services.Engine,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}
	accountHandlers := &AccountHandlers{Engine: services.Engine}

	ready := RequireReady(services.Engine)
	customerOnly := RequireCustomer(services.Engine)
	adminOnly := RequireAdmin(services.Engine)
	adminView := RequireAccess(services.Engine, AccessDeclaration{Permissions: []string{"admins.view"}})

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	mux.Handle("GET /api/session", chain(authHandlers.Session, ready))
	mux.Handle("POST /api/session/clear-error", chain(authHandlers.ClearError, ready))

	mux.Handle("POST /api/auth/login", chain(authHandlers.Login, ready))
	mux.Handle("POST /api/auth/register", chain(authHandlers.Register, ready))
	mux.Handle("POST /api/auth/logout", chain(authHandlers.Logout, ready))

	mux.Handle("POST /api/admin/auth/login", chain(authHandlers.AdminLogin, ready))
	mux.Handle("POST /api/admin/auth/logout", chain(authHandlers.AdminLogout, ready))

	mux.Handle("GET /admin/sso/login", chain(authHandlers.BeginSSO, ready))
	mux.Handle("GET /admin/sso/callback", chain(authHandlers.SSOCallback, ready))

	mux.Handle("GET /api/me", chain(accountHandlers.Me, ready, customerOnly))
	mux.Handle("GET /api/admin/me", chain(accountHandlers.Me, ready, adminOnly))
	mux.Handle("GET /api/admin/permissions", chain(accountHandlers.AdminPermissions, ready, adminOnly, adminView))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// chain wraps a handler func with middleware, outermost first.
func chain(h http.HandlerFunc, mws ...func(http.Handler) http.Handler) http.Handler {
	var handler http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
