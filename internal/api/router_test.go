package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/security"
	"github.com/99minutos/user-admin/internal/core/service"
	"github.com/99minutos/user-admin/internal/infrastructure/db/memory"
)

const testSecret = "router-test-secret"

type testServer struct {
	e    *echo.Echo
	repo *memory.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := memory.NewUserRepository()
	hasher := security.NewPasswordHasher(security.DefaultCost)
	authSvc := service.NewAuthService(repo, hasher, security.NewTokenCodec(testSecret), zerolog.Nop())
	userSvc := service.NewUserService(repo, hasher, nil, zerolog.Nop())

	if err := userSvc.EnsureSuperAdmin(context.Background(), "root@co", "rootpass", ""); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	e := NewRouter(Dependencies{
		AuthService:       authSvc,
		UserService:       userSvc,
		Log:               zerolog.Nop(),
		MetricsRegisterer: prometheus.NewRegistry(),
	})
	return &testServer{e: e, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login %s: no token in %s", email, rec.Body.String())
	}
	return resp.Token
}

func (s *testServer) idOf(t *testing.T, email string) string {
	t.Helper()
	u, err := s.repo.FindByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	return u.ID
}

func TestRouter_AdminRoleChangeScenario(t *testing.T) {
	s := newTestServer(t)
	rootToken := s.login(t, "root@co", "rootpass")

	rec := s.do(t, http.MethodPost, "/auth/users", rootToken,
		`{"email":"admin@co","password":"adminpass","role":"admin","username":"admin"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create admin: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	adminToken := s.login(t, "admin@co", "adminpass")
	rec = s.do(t, http.MethodPost, "/auth/users", adminToken,
		`{"email":"alice@example.com","password":"alicepass","role":"user","username":"alice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create alice: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	aliceID := s.idOf(t, "alice@example.com")

	rec = s.do(t, http.MethodPut, "/auth/users/"+aliceID+"/role", adminToken, `{"role":"superadmin"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("promote to superadmin: expected 403, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPut, "/auth/users/"+aliceID+"/role", adminToken, `{"role":"admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("promote to admin: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/auth/users", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	var alice map[string]any
	for _, u := range users {
		if u["email"] == "root@co" {
			t.Fatalf("system account must not be listed")
		}
		if u["email"] == "alice@example.com" {
			alice = u
		}
	}
	if alice == nil || alice["role"] != "admin" || alice["updatedBy"] != "admin@co" {
		t.Fatalf("unexpected alice record: %+v", alice)
	}
	if strings.Contains(rec.Body.String(), "$2a$") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("listing leaks credentials: %s", rec.Body.String())
	}
}

func TestRouter_AuthenticationPrecedesPolicy(t *testing.T) {
	s := newTestServer(t)
	u := &domain.User{ID: "u1", Email: "x@co", Role: domain.RoleSuperAdmin}
	expired, err := security.NewTokenCodec(testSecret).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	foreign, _ := security.NewTokenCodec("other-secret").Issue(u)

	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/auth/users", ""},
		{http.MethodPost, "/auth/users", `{"email":"a@b.co","password":"secret1","role":"user","username":"a"}`},
		{http.MethodPut, "/auth/users/missing/password", `{"password":"secret1"}`},
		{http.MethodPut, "/auth/users/missing/role", `{"role":"admin"}`},
		{http.MethodPut, "/auth/users/missing", `{"username":"x"}`},
	}
	for _, r := range routes {
		for name, token := range map[string]string{"none": "", "garbage": "abc.def", "expired": expired, "foreign": foreign} {
			rec := s.do(t, r.method, r.path, token, r.body)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("%s %s with %s token: expected 401, got %d", r.method, r.path, name, rec.Code)
			}
		}
	}
}

func TestRouter_UserRoleIsForbidden(t *testing.T) {
	s := newTestServer(t)
	rootToken := s.login(t, "root@co", "rootpass")
	rec := s.do(t, http.MethodPost, "/auth/users", rootToken,
		`{"email":"bob@co","password":"bobpass","role":"user","username":"bob"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bob: expected 201, got %d", rec.Code)
	}
	bobToken := s.login(t, "bob@co", "bobpass")

	if rec := s.do(t, http.MethodGet, "/auth/users", bobToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("list as user: expected 403, got %d", rec.Code)
	}
	bobID := s.idOf(t, "bob@co")
	if rec := s.do(t, http.MethodPut, "/auth/users/"+bobID+"/password", bobToken, `{"password":"another"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("own password as user: expected 403, got %d", rec.Code)
	}
}

func TestRouter_ErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	rootToken := s.login(t, "root@co", "rootpass")

	cases := []struct {
		name, method, path, body string
		code                     int
	}{
		{"bad login", http.MethodPost, "/auth/login", `{"email":"root@co","password":"wrong"}`, http.StatusUnauthorized},
		{"unknown login", http.MethodPost, "/auth/login", `{"email":"ghost@co","password":"wrong"}`, http.StatusUnauthorized},
		{"empty login", http.MethodPost, "/auth/login", `{"email":"","password":""}`, http.StatusBadRequest},
		{"duplicate", http.MethodPost, "/auth/users", `{"email":"ROOT@co","password":"secret1","role":"user","username":"r"}`, http.StatusConflict},
		{"short password", http.MethodPut, "/auth/users/any/password", `{"password":"123"}`, http.StatusBadRequest},
		{"short multi-byte password", http.MethodPut, "/auth/users/any/password", `{"password":"ééé"}`, http.StatusBadRequest},
		{"long password", http.MethodPut, "/auth/users/any/password", `{"password":"` + strings.Repeat("p", 80) + `"}`, http.StatusBadRequest},
		{"long password on create", http.MethodPost, "/auth/users", `{"email":"long@co","password":"` + strings.Repeat("p", 80) + `","role":"user","username":"long"}`, http.StatusBadRequest},
		{"missing user", http.MethodPut, "/auth/users/missing/password", `{"password":"secret1"}`, http.StatusNotFound},
		{"invalid role", http.MethodPut, "/auth/users/missing/role", `{"role":"owner"}`, http.StatusBadRequest},
		{"no fields", http.MethodPut, "/auth/users/missing", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		token := rootToken
		if tc.path == "/auth/login" {
			token = ""
		}
		rec := s.do(t, tc.method, tc.path, token, tc.body)
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.code, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_LoginFailuresLookAlike(t *testing.T) {
	s := newTestServer(t)

	wrong := s.do(t, http.MethodPost, "/auth/login", "", `{"email":"root@co","password":"nope"}`)
	unknown := s.do(t, http.MethodPost, "/auth/login", "", `{"email":"nobody@co","password":"nope"}`)

	if wrong.Code != unknown.Code || wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("login failures differ: %d %s vs %d %s", wrong.Code, wrong.Body, unknown.Code, unknown.Body)
	}
}

func TestRouter_Operational(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := s.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
