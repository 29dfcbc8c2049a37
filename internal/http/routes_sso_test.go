package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketlab/gatehouse/internal/ports"
)

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSSOLoginFlow(t *testing.T) {
	f := newRouterFixture(t, true)
	f.sso.Result = ports.LoginResult{Token: "sso-tok", Profile: []byte(testAdminProfile)}

	// Begin: redirect to the IdP with state and nonce stashed in cookies.
	beginRec := f.do(http.MethodGet, "/admin/sso/login?redirect_uri=/admin/reports", "")
	require.Equal(t, http.StatusFound, beginRec.Code)
	assert.Equal(t, "https://mock-idp/auth", beginRec.Header().Get("Location"))

	cookies := beginRec.Result().Cookies()
	stateCookie := cookieByName(cookies, "sso_state")
	nonceCookie := cookieByName(cookies, "sso_nonce")
	redirectCookie := cookieByName(cookies, "sso_redirect")
	require.NotNil(t, stateCookie)
	require.NotNil(t, nonceCookie)
	require.NotNil(t, redirectCookie)
	assert.True(t, stateCookie.HttpOnly)
	assert.Equal(t, "/admin/reports", redirectCookie.Value)

	// Callback: state must match the cookie; on success we land on the
	// stashed destination with an admin session in place.
	req := httptest.NewRequest(http.MethodGet, "/admin/sso/callback?code=abc&state="+stateCookie.Value, nil)
	req.AddCookie(stateCookie)
	req.AddCookie(nonceCookie)
	req.AddCookie(redirectCookie)
	callbackRec := httptest.NewRecorder()
	f.handler.ServeHTTP(callbackRec, req)

	require.Equal(t, http.StatusFound, callbackRec.Code)
	assert.Equal(t, "/admin/reports", callbackRec.Header().Get("Location"))

	snap := f.engine.Snapshot()
	assert.True(t, snap.IsAdmin)
}

func TestSSOCallback_Validation(t *testing.T) {
	t.Run("missing code", func(t *testing.T) {
		f := newRouterFixture(t, true)
		rec := f.do(http.MethodGet, "/admin/sso/callback?state=s", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing_code", decodeBody(t, rec)["error"])
	})

	t.Run("missing state", func(t *testing.T) {
		f := newRouterFixture(t, true)
		rec := f.do(http.MethodGet, "/admin/sso/callback?code=abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing_state", decodeBody(t, rec)["error"])
	})

	t.Run("state mismatch", func(t *testing.T) {
		f := newRouterFixture(t, true)
		req := httptest.NewRequest(http.MethodGet, "/admin/sso/callback?code=abc&state=forged", nil)
		req.AddCookie(&http.Cookie{Name: "sso_state", Value: "real"})
		req.AddCookie(&http.Cookie{Name: "sso_nonce", Value: "n"})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_state", decodeBody(t, rec)["error"])
		assert.False(t, f.engine.Snapshot().IsAdmin)
	})
}

func TestProtectedRoutes(t *testing.T) {
	t.Run("me requires a session", func(t *testing.T) {
		f := newRouterFixture(t, true)
		rec := f.do(http.MethodGet, "/api/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me returns the customer profile", func(t *testing.T) {
		f := newRouterFixture(t, true)
		f.customers.Result = ports.LoginResult{Token: "tok", Profile: []byte(testCustomerProfile)}
		f.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"pw"}`)

		rec := f.do(http.MethodGet, "/api/me", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "customer", body["kind"])
	})

	t.Run("admin permissions demands admins.view", func(t *testing.T) {
		f := newRouterFixture(t, true)
		f.admins.Result = ports.LoginResult{Token: "tok", Profile: []byte(testAdminProfile)}
		f.do(http.MethodPost, "/api/admin/auth/login", `{"email":"o@b.c","password":"pw"}`)

		// support_agent carries order permissions only.
		rec := f.do(http.MethodGet, "/api/admin/permissions", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("super admin reads the catalogue", func(t *testing.T) {
		f := newRouterFixture(t, true)
		f.admins.Result = ports.LoginResult{Token: "tok", Profile: []byte(testSuperAdminProfile)}
		f.do(http.MethodPost, "/api/admin/auth/login", `{"email":"r@b.c","password":"pw"}`)

		rec := f.do(http.MethodGet, "/api/admin/permissions", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "super_admin", body["role"])
		assert.NotEmpty(t, body["catalogue"])
	})
}
