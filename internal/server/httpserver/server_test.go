package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/dmitrijs2005/bookmate-auth/internal/logging"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/auth"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/metrics"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/models"
)

type fakeWorkflow struct {
	registerErr error
	confirmErr  error
	loginTok    *auth.Token
	loginErr    error

	gotEmail    string
	gotPassword string
}

func (f *fakeWorkflow) Register(_ context.Context, email, password string) (*models.Account, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Account{ID: "a-1", Email: email}, nil
}

func (f *fakeWorkflow) ConfirmEmail(_ context.Context, email string) error {
	f.gotEmail = email
	return f.confirmErr
}

func (f *fakeWorkflow) Login(_ context.Context, email, password string) (*auth.Token, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginTok, nil
}

func newTestIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	i, err := auth.NewIssuer(auth.TokenConfig{SigningKey: "k", Issuer: "bookmate", Audience: "bookmate-clients"})
	require.NoError(t, err)
	return i
}

func newTestServer(t *testing.T, wf AuthWorkflow) (*HTTPServer, *auth.Issuer, *metrics.Metrics) {
	t.Helper()
	issuer := newTestIssuer(t)
	m := metrics.New()
	return NewHTTPServer("127.0.0.1:0", logging.NewNop(), wf, issuer, m), issuer, m
}

func do(t *testing.T, s *HTTPServer, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(body) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp.StatusCode, out
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func TestRegister_OK(t *testing.T) {
	wf := &fakeWorkflow{}
	s, _, _ := newTestServer(t, wf)

	code, body := do(t, s, jsonRequest("POST", "/api/auth/register", `{"email":"alice@example.com","password":"pw"}`))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User registered. Please confirm your email.", body["message"])
	assert.Equal(t, "alice@example.com", wf.gotEmail)
	assert.Equal(t, "pw", wf.gotPassword)
}

func TestRegister_Duplicate(t *testing.T) {
	wf := &fakeWorkflow{registerErr: oops.Code("AUTH_DUPLICATE_EMAIL").Wrap(common.ErrDuplicateEmail)}
	s, _, _ := newTestServer(t, wf)

	code, body := do(t, s, jsonRequest("POST", "/api/auth/register", `{"email":"alice@example.com","password":"pw"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already registered", body["message"])
}

func TestRegister_BadBody(t *testing.T) {
	s, _, _ := newTestServer(t, &fakeWorkflow{})

	code, body := do(t, s, jsonRequest("POST", "/api/auth/register", `{"email":`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestConfirmEmail(t *testing.T) {
	wf := &fakeWorkflow{}
	s, _, _ := newTestServer(t, wf)

	code, body := do(t, s, httptest.NewRequest("GET", "/api/auth/confirm-email?email=alice%40example.com", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Email confirmed!", body["message"])
	assert.Equal(t, "alice@example.com", wf.gotEmail)

	wf.confirmErr = common.ErrorNotFound
	code, body = do(t, s, httptest.NewRequest("GET", "/api/auth/confirm-email?email=ghost%40example.com", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["message"])
}

func TestLogin_OK(t *testing.T) {
	exp := time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)
	wf := &fakeWorkflow{loginTok: &auth.Token{Value: "jwt-value", ExpiresAt: exp}}
	s, _, _ := newTestServer(t, wf)

	code, body := do(t, s, jsonRequest("POST", "/api/auth/login", `{"email":"a@x.com","password":"p1"}`))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "jwt-value", body["token"])
	assert.Equal(t, "2026-10-15T13:00:00Z", body["expires_at"])
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"invalid credentials", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(common.ErrInvalidCredentials), http.StatusUnauthorized, "Invalid credentials"},
		{"not confirmed", common.ErrEmailNotConfirmed, http.StatusBadRequest, "Email not confirmed"},
		{"timeout", fmt.Errorf("%w: %w", common.ErrTimeout, context.DeadlineExceeded), http.StatusGatewayTimeout, "Request timed out"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
		{"corrupt hash", common.ErrCorruptHash, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestServer(t, &fakeWorkflow{loginErr: tt.err})
			code, body := do(t, s, jsonRequest("POST", "/api/auth/login", `{"email":"a@x.com","password":"p1"}`))
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}

func TestLogin_InvalidInputMessage(t *testing.T) {
	wf := &fakeWorkflow{loginErr: fmt.Errorf("%w: email: cannot be blank.", common.ErrInvalidInput)}
	s, _, _ := newTestServer(t, wf)

	code, body := do(t, s, jsonRequest("POST", "/api/auth/login", `{"password":"p1"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "email: cannot be blank")
}

func TestMe(t *testing.T) {
	s, issuer, _ := newTestServer(t, &fakeWorkflow{})

	tok, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	code, body := do(t, s, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice@example.com", body["subject"])
	assert.Equal(t, tok.ID, body["token_id"])
}

func TestMe_Rejected(t *testing.T) {
	s, _, _ := newTestServer(t, &fakeWorkflow{})

	other, err := auth.NewIssuer(auth.TokenConfig{SigningKey: "other", Issuer: "bookmate", Audience: "bookmate-clients"})
	require.NoError(t, err)
	foreign, err := other.Issue("alice@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{"no header", "", "Missing bearer token"},
		{"wrong scheme", "Basic abc", "Missing bearer token"},
		{"empty token", "Bearer ", "Missing bearer token"},
		{"garbage", "Bearer not.a.jwt", "Invalid token"},
		{"foreign key", "Bearer " + foreign.Value, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			code, body := do(t, s, req)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}

type expiredValidator struct{}

func (expiredValidator) Validate(string) (*auth.Claims, error) { return nil, common.ErrTokenExpired }

func TestMe_Expired(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", logging.NewNop(), &fakeWorkflow{}, expiredValidator{}, nil)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	code, body := do(t, s, req)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token expired", body["message"])
}

func TestHealthzAndMetrics(t *testing.T) {
	s, _, _ := newTestServer(t, &fakeWorkflow{})

	code, body := do(t, s, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	resp, err := s.App().Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `bookmate_auth_http_requests_total{route="/healthz",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	s, _, _ := newTestServer(t, &fakeWorkflow{})

	code, _ := do(t, s, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", logging.NewNop(), &fakeWorkflow{}, newTestIssuer(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(7 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:99999", logging.NewNop(), &fakeWorkflow{}, newTestIssuer(t), nil)

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid port")
	}
}
