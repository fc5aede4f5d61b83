package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/superapp/auth-service/internal/api/handler"
	"github.com/superapp/auth-service/internal/core/ports"
	"github.com/superapp/auth-service/internal/core/service"
	"github.com/superapp/auth-service/internal/infrastructure/db/sqldb"
)

type captureNotifier struct {
	mu   sync.Mutex
	last map[string]string
}

func (n *captureNotifier) Notify(_ context.Context, msg ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.last == nil {
		n.last = make(map[string]string)
	}
	n.last[msg.To] = msg.Code
	return nil
}

func (n *captureNotifier) code(to string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last[to]
}

type testServer struct {
	e        *echo.Echo
	notifier *captureNotifier
	admin    *service.AdminService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()

	store, err := sqldb.Open(context.Background(), sqldb.Options{
		Driver: sqldb.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	hasher := service.NewBcryptHasher(bcrypt.MinCost)
	tokens := service.NewTokenIssuer("test-secret", time.Hour)
	notifier := &captureNotifier{}

	authSvc := service.NewAuthService(store, hasher, service.NewCodeGenerator(), notifier, tokens, log, service.AuthOptions{})
	adminSvc := service.NewAdminService(store, hasher, nil, log)

	e := NewRouter(Deps{
		AuthService:  authSvc,
		AdminService: adminSvc,
		Tokens:       tokens,
		Store:        store,
		Readiness:    map[string]handler.Pinger{"store": store},
		Log:          log,
		Registry:     prometheus.NewRegistry(),
	})
	return &testServer{e: e, notifier: notifier, admin: adminSvc}
}

func (s *testServer) do(method, path, body, token string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, resp := s.do(http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, code, resp)
	return resp["data"].(map[string]any)["token"].(string)
}

func TestRouter_AccountLifecycle(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodPost, "/api/auth/register", `{"email":"a@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending_verification", resp["status"])
	assert.Equal(t, float64(1), resp["data"].(map[string]any)["id"])

	code, _ = s.do(http.MethodPost, "/api/auth/register", `{"email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusConflict, code)

	code, resp = s.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "unverified", resp["status"])

	verification := s.notifier.code("a@x.com")
	wrong := "100000"
	if verification == wrong {
		wrong = "100001"
	}
	code, resp = s.do(http.MethodPost, "/api/auth/verify", `{"email":"a@x.com","code":"`+wrong+`"}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", resp["status"])

	code, _ = s.do(http.MethodPost, "/api/auth/verify", `{"email":"a@x.com","code":"`+verification+`"}`, "")
	require.Equal(t, http.StatusOK, code)

	token := s.login(t, "a@x.com", "secret1")
	assert.NotEmpty(t, token)

	code, resp = s.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", resp["message"])

	code, resp = s.do(http.MethodPost, "/api/auth/forgot-password", `{"email":"a@x.com"}`, "")
	require.Equal(t, http.StatusOK, code)
	_, ghost := s.do(http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@x.com"}`, "")
	assert.Equal(t, resp, ghost)

	reset := s.notifier.code("a@x.com")
	code, _ = s.do(http.MethodPost, "/api/auth/reset-password", `{"email":"a@x.com","code":"`+reset+`","newPassword":"newpass1"}`, "")
	require.Equal(t, http.StatusOK, code)
	s.login(t, "a@x.com", "newpass1")

	code, _ = s.do(http.MethodPost, "/api/auth/reset-password", `{"email":"a@x.com","code":"`+reset+`","newPassword":"again12"}`, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = s.do(http.MethodGet, "/api/auth/check-email/a@x.com", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["exists"])
}

func TestRouter_LongPasswordIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("p", 80)

	code, resp := s.do(http.MethodPost, "/api/auth/register", `{"email":"long@x.com","password":"`+long+`"}`, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", resp["status"])

	code, _ = s.do(http.MethodPost, "/api/auth/register", `{"email":"long@x.com","password":"`+long[:72]+`"}`, "")
	assert.Equal(t, http.StatusCreated, code)
}

func TestRouter_AdminSurface(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/api/auth/register", `{"email":"u@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/auth/verify", `{"email":"u@x.com","code":"`+s.notifier.code("u@x.com")+`"}`, "")
	require.Equal(t, http.StatusOK, code)
	userToken := s.login(t, "u@x.com", "secret1")

	admin, err := s.admin.EnsureAdmin(context.Background(), "root@x.com", "root", "rootpass")
	require.NoError(t, err)
	adminToken := s.login(t, "root@x.com", "rootpass")

	code, _ = s.do(http.MethodGet, "/api/admin/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodGet, "/api/admin/stats", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodGet, "/api/admin/stats", "", userToken)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.do(http.MethodGet, "/api/admin/stats", "", adminToken)
	require.Equal(t, http.StatusOK, code)
	stats := resp["data"].(map[string]any)
	assert.Equal(t, float64(2), stats["totalUsers"])
	assert.Equal(t, float64(2), stats["activeSessions"])
	assert.Equal(t, "OK", stats["serverStatus"])

	code, resp = s.do(http.MethodGet, "/api/admin/users", "", adminToken)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["data"].([]any), 2)

	code, _ = s.do(http.MethodDelete, "/api/admin/users/"+strconv.FormatInt(admin.ID, 10), "", adminToken)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(http.MethodDelete, "/api/admin/users/1", "", adminToken)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, "/api/admin/users/1", "", adminToken)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "connected", resp["database"])

	code, _ = s.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, resp = s.do(http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, map[string]any{"status": "error", "message": "route not found"}, resp)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
