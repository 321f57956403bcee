package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/middleware"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type stubUserService struct {
	listFn           func(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	createFn         func(ctx context.Context, actor domain.Actor, in ports.CreateUserInput) (*domain.User, error)
	changePasswordFn func(ctx context.Context, actor domain.Actor, id, pw string) error
	changeRoleFn     func(ctx context.Context, actor domain.Actor, id, role string) error
	updateFn         func(ctx context.Context, actor domain.Actor, id string, in ports.UpdateProfileInput) error
}

func (s *stubUserService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	return s.listFn(ctx, actor)
}

func (s *stubUserService) CreateUser(ctx context.Context, actor domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubUserService) ChangePassword(ctx context.Context, actor domain.Actor, id, pw string) error {
	return s.changePasswordFn(ctx, actor, id, pw)
}

func (s *stubUserService) ChangeRole(ctx context.Context, actor domain.Actor, id, role string) error {
	return s.changeRoleFn(ctx, actor, id, role)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, actor domain.Actor, id string, in ports.UpdateProfileInput) error {
	return s.updateFn(ctx, actor, id, in)
}

var testAdmin = domain.Actor{ID: "a1", Email: "admin@co", Role: domain.RoleAdmin, Username: "admin"}

// newUserContext builds a request context with the actor already injected,
// as the Auth middleware would.
func newUserContext(method, target, body, id string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	c.Set(middleware.ActorKey, testAdmin)
	return c, rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTPError %d, got %v", code, err)
	}
}

func TestUserHandler_List(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubUserService{
		listFn: func(_ context.Context, actor domain.Actor) ([]*domain.User, error) {
			if actor.Email != "admin@co" {
				t.Fatalf("actor not forwarded: %+v", actor)
			}
			return []*domain.User{{
				ID: "u1", Email: "a@example.com", Username: "a", Role: domain.RoleUser,
				PasswordHash: "$2a$10$secret", UpdatedBy: "admin@co", UpdatedAt: at,
			}}, nil
		},
	}
	c, rec := newUserContext(http.MethodGet, "/auth/users", "", "")

	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("hash leaked: %s", rec.Body.String())
	}

	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(users) != 1 || users[0]["updatedBy"] != "admin@co" || users[0]["updatedAt"] != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected payload: %+v", users)
	}
}

func TestUserHandler_List_RequiresActor(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/users", nil), httptest.NewRecorder())

	err := NewUserHandler(&stubUserService{}).List(c)
	expectHTTPError(t, err, http.StatusUnauthorized)
}

func TestUserHandler_Create(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, _ domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
			if in.Email != "alice@example.com" || in.Username != "alice" || in.Password != "secret1" || in.Role != "user" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1"}, nil
		},
	}
	c, rec := newUserContext(http.MethodPost, "/auth/users",
		`{"email":"alice@example.com","password":"secret1","role":"user","username":"alice"}`, "")

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestUserHandler_Create_ValidationFailure(t *testing.T) {
	stub := &stubUserService{
		createFn: func(context.Context, domain.Actor, ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	for name, body := range map[string]string{
		"missing fields": `{"email":"alice@example.com"}`,
		"long email":     `{"email":"` + strings.Repeat("a", 250) + `@co","password":"secret1","role":"user","username":"a"}`,
		"bad role":       `{"email":"a@example.com","password":"secret1","role":"root","username":"a"}`,
		"bad json":       `{`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newUserContext(http.MethodPost, "/auth/users", body, "")
			expectHTTPError(t, h.Create(c), http.StatusBadRequest)
		})
	}
}

func TestUserHandler_Create_AcceptsDotlessDomain(t *testing.T) {
	called := false
	stub := &stubUserService{
		createFn: func(_ context.Context, _ domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
			called = true
			if in.Email != "admin@co" {
				t.Fatalf("unexpected email %q", in.Email)
			}
			return &domain.User{ID: "u2"}, nil
		},
	}
	c, rec := newUserContext(http.MethodPost, "/auth/users",
		`{"email":"admin@co","password":"adminpass","role":"admin","username":"admin"}`, "")

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from service, got %d (called=%v)", rec.Code, called)
	}
}

func TestUserHandler_Create_ServiceErrorPassesThrough(t *testing.T) {
	stub := &stubUserService{
		createFn: func(context.Context, domain.Actor, ports.CreateUserInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newUserContext(http.MethodPost, "/auth/users",
		`{"email":"alice@example.com","password":"secret1","role":"user","username":"alice"}`, "")

	if err := NewUserHandler(stub).Create(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	stub := &stubUserService{
		changePasswordFn: func(_ context.Context, _ domain.Actor, id, pw string) error {
			if id != "u1" || pw != "newpass" {
				t.Fatalf("unexpected args: %s %s", id, pw)
			}
			return nil
		},
	}
	c, rec := newUserContext(http.MethodPut, "/auth/users/u1/password", `{"password":"newpass"}`, "u1")

	if err := NewUserHandler(stub).ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_ChangeRole(t *testing.T) {
	stub := &stubUserService{
		changeRoleFn: func(_ context.Context, _ domain.Actor, id, role string) error {
			if id != "u1" {
				t.Fatalf("unexpected id %s", id)
			}
			if role == "superadmin" {
				return domain.ErrForbidden
			}
			return nil
		},
	}
	h := NewUserHandler(stub)

	c, _ := newUserContext(http.MethodPut, "/auth/users/u1/role", `{"role":"superadmin"}`, "u1")
	if err := h.ChangeRole(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, rec := newUserContext(http.MethodPut, "/auth/users/u1/role", `{"role":"admin"}`, "u1")
	if err := h.ChangeRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newUserContext(http.MethodPut, "/auth/users/u1/role", `{}`, "u1")
	expectHTTPError(t, h.ChangeRole(c), http.StatusBadRequest)
}

func TestUserHandler_Update_PartialFields(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, _ domain.Actor, id string, in ports.UpdateProfileInput) error {
			if id != "u1" || in.Username == nil || *in.Username != "Alice" || in.Role != nil {
				t.Fatalf("unexpected input: %s %+v", id, in)
			}
			return nil
		},
	}
	c, rec := newUserContext(http.MethodPut, "/auth/users/u1", `{"username":"Alice"}`, "u1")

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
