package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	authrepo "github.com/atriumhq/atrium/internal/auth/repository"
	authsvc "github.com/atriumhq/atrium/internal/auth/service"
	"github.com/atriumhq/atrium/internal/config"
	orgdomain "github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/atriumhq/atrium/internal/organization/permissions"
	orgrepo "github.com/atriumhq/atrium/internal/organization/repository"
	orgsvc "github.com/atriumhq/atrium/internal/organization/service"
	"github.com/atriumhq/atrium/internal/providers/email"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// app wires the real services over an in-memory database so requests
// exercise the same path as production, minus fx and the listener.
type app struct {
	engine *gin.Engine
	codecs authsvc.Tokens
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		AppName:     "atrium-test",
		Environment: "test",
		FrontendURL: "http://front.test/",
		Auth: config.AuthConfig{
			AccessSecret:  "integration-access-secret",
			RefreshSecret: "integration-refresh-secret",
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
		},
	}

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&authdomain.User{}, &authdomain.RefreshToken{},
		&orgdomain.Organization{}, &orgdomain.OrgMember{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	users, refreshTokens := authrepo.New(conn)
	orgs, members := orgrepo.New(conn)

	log := zap.NewNop()
	codecs := authsvc.NewTokens(cfg)
	auth := authsvc.New(log, users, refreshTokens, codecs, email.NoOpMailer{}, node, cfg)
	org := orgsvc.New(log, conn, orgs, members, users, orgsvc.NewSigner(cfg), node, cfg)
	guard := permissions.NewGuard(orgs, members)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	RegisterRoutes(engine, NewServer(log, cfg, auth, org, guard))

	return &app{engine: engine, codecs: codecs}
}

func (a *app) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &parsed)
	}
	return rec, parsed
}

// signup registers and verifies an account, then logs in and returns
// the access token.
func (a *app) signup(t *testing.T, first, last, emailAddr, password string) string {
	t.Helper()

	rec, _ := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"first_name": first,
		"last_name":  last,
		"email":      emailAddr,
		"password":   password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", emailAddr, rec.Code, rec.Body.String())
	}

	verifyTok := a.codecs.Timed.Sign(emailAddr)
	rec, _ = a.do(t, http.MethodGet, "/auth/verification/"+verifyTok, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify %s: expected 200, got %d: %s", emailAddr, rec.Code, rec.Body.String())
	}

	rec, body := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    emailAddr,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", emailAddr, rec.Code, rec.Body.String())
	}
	access, _ := body["access_token"].(string)
	if access == "" {
		t.Fatalf("login %s: missing access_token in %s", emailAddr, rec.Body.String())
	}
	return access
}

func parseInviteLink(t *testing.T, link string) (slugTok, roleTok string) {
	t.Helper()
	trimmed := strings.TrimSuffix(link, "/mixer=invite/")
	if trimmed == link {
		t.Fatalf("unexpected invite link format: %q", link)
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		t.Fatalf("unexpected invite link format: %q", link)
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

func TestSignupLoginFlow(t *testing.T) {
	a := newApp(t)

	// Login before verification is rejected.
	rec, _ := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"password":   "correct horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unverified login: expected 401, got %d", rec.Code)
	}

	verifyTok := a.codecs.Timed.Sign("ada@example.com")
	rec, _ = a.do(t, http.MethodGet, "/auth/verification/"+verifyTok, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, body := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	refresh := rec.Header().Get(HeaderRefresh)
	if refresh == "" {
		t.Fatal("login: missing refresh header")
	}
	access := body["access_token"].(string)

	rec, body = a.do(t, http.MethodGet, "/auth/me", access, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := body["data"].(map[string]any)
	if data["email"] != "ada@example.com" {
		t.Fatalf("me: unexpected payload %s", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
	req.Header.Set(HeaderRefresh, refresh)
	recorder := httptest.NewRecorder()
	a.engine.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestOrganizationInviteFlow(t *testing.T) {
	a := newApp(t)

	owner := a.signup(t, "Ada", "Lovelace", "ada@example.com", "correct horse")
	a.signup(t, "Grace", "Hopper", "grace@example.com", "battery staple")

	rec, body := a.do(t, http.MethodPost, "/org", owner, map[string]string{"name": "Analytical Engines"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create org: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := body["data"].(map[string]any)
	orgSlug := data["slug"].(string)

	rec, body = a.do(t, http.MethodPost, fmt.Sprintf("/org/%s/invite", orgSlug), owner, map[string]string{"role": "member"})
	if rec.Code != http.StatusOK {
		t.Fatalf("invite: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	link, _ := body["data"].(string)
	slugTok, roleTok := parseInviteLink(t, link)

	joinPath := fmt.Sprintf("/org/join/%s/%s", slugTok, roleTok)
	rec, _ = a.do(t, http.MethodPost, joinPath, owner, map[string]string{"email": "grace@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("join: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Second join with the same email is a conflict.
	rec, _ = a.do(t, http.MethodPost, joinPath, owner, map[string]string{"email": "grace@example.com"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("rejoin: expected 409, got %d", rec.Code)
	}

	rec, body = a.do(t, http.MethodGet, fmt.Sprintf("/org/%s/members", orgSlug), owner, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("members: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := len(body["data"].([]any)); got != 2 {
		t.Fatalf("expected 2 members, got %d", got)
	}

	// Revoking the link disables outstanding invite tokens.
	rec, _ = a.do(t, http.MethodPost, fmt.Sprintf("/org/%s/revoke", orgSlug), owner, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = a.do(t, http.MethodPost, joinPath, owner, map[string]string{"email": "ada@example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("join after revoke: expected 400, got %d", rec.Code)
	}
}

func TestAdminGateAndQuotaOverHTTP(t *testing.T) {
	a := newApp(t)

	owner := a.signup(t, "Ada", "Lovelace", "ada@example.com", "correct horse")
	member := a.signup(t, "Grace", "Hopper", "grace@example.com", "battery staple")

	rec, body := a.do(t, http.MethodPost, "/org", owner, map[string]string{"name": "First Org"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create org: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	orgSlug := body["data"].(map[string]any)["slug"].(string)

	rec, body = a.do(t, http.MethodPost, fmt.Sprintf("/org/%s/invite", orgSlug), owner, map[string]string{"role": "member"})
	if rec.Code != http.StatusOK {
		t.Fatalf("invite: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	slugTok, roleTok := parseInviteLink(t, body["data"].(string))
	rec, _ = a.do(t, http.MethodPost, fmt.Sprintf("/org/join/%s/%s", slugTok, roleTok), member, map[string]string{"email": "grace@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("join: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// A plain member cannot touch admin-only surfaces.
	rec, _ = a.do(t, http.MethodDelete, "/org/"+orgSlug, member, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("member delete: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = a.do(t, http.MethodPost, fmt.Sprintf("/org/%s/invite", orgSlug), member, map[string]string{"role": "admin"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("member invite: expected 409, got %d", rec.Code)
	}

	// A non-member cannot even read the organization.
	outsider := a.signup(t, "Alan", "Turing", "alan@example.com", "enigma machine")
	rec, _ = a.do(t, http.MethodGet, "/org/"+orgSlug, outsider, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("outsider get: expected 404, got %d", rec.Code)
	}

	// Free accounts are capped at two created organizations.
	rec, _ = a.do(t, http.MethodPost, "/org", owner, map[string]string{"name": "Second Org"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("second org: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = a.do(t, http.MethodPost, "/org", owner, map[string]string{"name": "Third Org"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("third org: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
