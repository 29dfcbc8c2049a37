package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	mockauth "github.com/ticketlab/gatehouse/internal/mocks/auth"
	"github.com/ticketlab/gatehouse/internal/ports"
	"github.com/ticketlab/gatehouse/internal/service"
)

const testCustomerProfile = `{
	"id": "c-1",
	"email": "amy@example.com",
	"first_name": "Amy",
	"role": "user"
}`

const testAdminProfile = `{
	"id": "a-1",
	"email": "ops@example.com",
	"first_name": "Kim",
	"role": "support_agent",
	"permissions": ["orders_view", "orders.refund"],
	"is_active": true
}`

const testSuperAdminProfile = `{
	"id": "a-0",
	"email": "root@example.com",
	"first_name": "Root",
	"role": "super_admin",
	"is_active": true
}`

type routerFixture struct {
	engine    *service.SessionService
	slots     *mockauth.MemorySlotStore
	customers *mockauth.ScriptedCustomerAuthenticator
	admins    *mockauth.ScriptedAdminAuthenticator
	sso       *mockauth.MockSSOProvider
	handler   http.Handler
}

// newRouterFixture builds a router over a real engine with scripted
// backends. The engine is restored (settled) unless restore is false.
func newRouterFixture(t *testing.T, restore bool) *routerFixture {
	t.Helper()
	f := &routerFixture{
		slots:     mockauth.NewMemorySlotStore(),
		customers: &mockauth.ScriptedCustomerAuthenticator{},
		admins:    &mockauth.ScriptedAdminAuthenticator{},
		sso:       &mockauth.MockSSOProvider{},
	}
	f.engine = service.NewSessionService(service.SessionServiceOptions{
		Slots:     f.slots,
		Customers: f.customers,
		Admins:    f.admins,
		SSO:       f.sso,
	})
	if restore {
		f.engine.Restore(context.Background())
	}
	f.handler = NewRouter(RouterServices{Engine: f.engine})
	return f
}

func (f *routerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSessionEndpoint(t *testing.T) {
	f := newRouterFixture(t, true)

	rec := f.do(http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "unauthenticated", body["state"])
	assert.Equal(t, false, body["is_authenticated"])
	assert.NotContains(t, body, "principal")
}

func TestLogin(t *testing.T) {
	t.Run("success returns the customer snapshot", func(t *testing.T) {
		f := newRouterFixture(t, true)
		f.customers.Result = ports.LoginResult{Token: "tok-1", Profile: []byte(testCustomerProfile)}

		rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"amy@example.com","password":"pw"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "customer_session", body["state"])
		principal := body["principal"].(map[string]any)
		assert.Equal(t, "customer", principal["kind"])
		profile := principal["profile"].(map[string]any)
		assert.Equal(t, "c-1", profile["id"])
	})

	t.Run("rejection surfaces the backend message", func(t *testing.T) {
		f := newRouterFixture(t, true)
		f.customers.Err = apperrors.LoginRejected("invalid email or password")

		rec := f.do(http.MethodPost, "/api/auth/login", `{"email":"amy@example.com","password":"bad"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "login_rejected", body["error"])
		assert.Equal(t, "invalid email or password", body["message"])
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		f := newRouterFixture(t, true)
		rec := f.do(http.MethodPost, "/api/auth/login", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_json", decodeBody(t, rec)["error"])
	})
}

func TestRegister(t *testing.T) {
	f := newRouterFixture(t, true)
	f.customers.RegisterFunc = func(_ context.Context, reg ports.Registration) (ports.LoginResult, error) {
		if reg.Email != "bo@example.com" {
			return ports.LoginResult{}, apperrors.Validation("unexpected email")
		}
		return ports.LoginResult{Token: "tok-2", Profile: []byte(testCustomerProfile)}, nil
	}

	rec := f.do(http.MethodPost, "/api/auth/register", `{"email":"bo@example.com","password":"pw","first_name":"Bo"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "customer_session", decodeBody(t, rec)["state"])
}

func TestLogout_Idempotent(t *testing.T) {
	f := newRouterFixture(t, true)
	f.customers.Result = ports.LoginResult{Token: "tok-1", Profile: []byte(testCustomerProfile)}
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"pw"}`).Code)

	rec := f.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unauthenticated", decodeBody(t, rec)["state"])

	// Logging out again is still a 200.
	rec = f.do(http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLoginAndLogout(t *testing.T) {
	f := newRouterFixture(t, true)
	f.admins.Result = ports.LoginResult{Token: "tok-a", Profile: []byte(testAdminProfile)}

	rec := f.do(http.MethodPost, "/api/admin/auth/login", `{"email":"ops@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "admin_session", body["state"])
	assert.Equal(t, true, body["is_admin"])

	rec = f.do(http.MethodPost, "/api/admin/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unauthenticated", decodeBody(t, rec)["state"])
}

func TestClearError(t *testing.T) {
	f := newRouterFixture(t, true)
	f.customers.Err = apperrors.LoginRejected("nope")
	f.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"pw"}`)

	rec := f.do(http.MethodGet, "/api/session", "")
	assert.Equal(t, "nope", decodeBody(t, rec)["error"])

	rec = f.do(http.MethodPost, "/api/session/clear-error", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decodeBody(t, rec), "error")
}

func TestHealthzServesWhileInitializing(t *testing.T) {
	f := newRouterFixture(t, false)

	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
