package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/config"
	orgdomain "github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	registerErr error
	loginErr    error
	refreshErr  error
	user        *authdomain.User
}

func (f *fakeAuthService) Register(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.RegisterResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &authdomain.RegisterResult{
		User:     &authdomain.User{ID: 1, Email: req.Email},
		MailSent: true,
	}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		User:         &authdomain.User{ID: 1, Email: req.Email},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}, nil
}

func (f *fakeAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return "fresh-access-token", nil
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, accessToken string) (*authdomain.User, error) {
	if f.user == nil {
		return nil, authdomain.ErrInvalidCredentials
	}
	return f.user, nil
}

func (f *fakeAuthService) UpdateProfile(ctx context.Context, user *authdomain.User, req authdomain.UpdateProfileRequest) (*authdomain.User, error) {
	return user, nil
}

func (f *fakeAuthService) DeleteAccount(ctx context.Context, user *authdomain.User) error {
	return nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, user *authdomain.User, oldPassword, newPassword string) error {
	return nil
}

func (f *fakeAuthService) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	return true, nil
}

func (f *fakeAuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	return nil
}

func (f *fakeAuthService) ResendVerification(ctx context.Context, email string) (bool, error) {
	return true, nil
}

func (f *fakeAuthService) CompleteVerification(ctx context.Context, token string) error {
	return nil
}

type fakeOrgService struct {
	orgdomain.Service
}

func newFakeServer(t *testing.T, authsvc authdomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := NewServer(zap.NewNop(), config.Config{}, authsvc, fakeOrgService{}, nil)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	RegisterRoutes(engine, srv)
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{})

	rec := postJSON(t, engine, "/auth/register", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "a@x.com",
		"password":   "pw1-strong-enough",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterDuplicateMapsToConflict(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{registerErr: authdomain.ErrUserExists})

	rec := postJSON(t, engine, "/auth/register", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "a@x.com",
		"password":   "pw1-strong-enough",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{})

	rec := postJSON(t, engine, "/auth/register", map[string]string{"email": "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginSetsRefreshHeader(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{})

	rec := postJSON(t, engine, "/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "pw1-strong-enough",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(HeaderRefresh) != "refresh-token" {
		t.Fatalf("expected refresh header, got %q", rec.Header().Get(HeaderRefresh))
	}
}

func TestUnverifiedLoginMapsToUnauthorized(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{loginErr: authdomain.ErrNotVerified})

	rec := postJSON(t, engine, "/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "pw1-strong-enough",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshRequiresHeader(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
	req.Header.Set(HeaderRefresh, "refresh-token")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMeRequiresBearerToken(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{user: &authdomain.User{ID: 1, Email: "a@x.com"}})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestResendVerificationEndpoint(t *testing.T) {
	engine := newFakeServer(t, &fakeAuthService{})

	rec := postJSON(t, engine, "/auth/verification/resend", map[string]string{"email": "a@x.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
