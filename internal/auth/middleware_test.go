package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("hierarchy-test-secret")

func mustToken(t *testing.T, role string) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "tester",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func wrapped() http.Handler {
	m := NewMiddleware(testSecret, []string{"/api/health"}, "/api/v1/hierarchy/")
	return m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Role", string(RoleFromContext(r.Context())))
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestMiddleware_MissingToken(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_BadToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	wrapped().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_ViewerCannotTriggerRun(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hierarchy/recalculate", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, "viewer"))
	rec := httptest.NewRecorder()
	wrapped().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestMiddleware_OperatorTriggersRun(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hierarchy/recalculate", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, "operator"))
	rec := httptest.NewRecorder()
	wrapped().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("X-Role"); got != "operator" {
		t.Fatalf("role in context = %q, want operator", got)
	}
}

func TestMiddleware_ViewerReadsStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, "viewer"))
	rec := httptest.NewRecorder()
	wrapped().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestMiddleware_ExemptPath(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestParseJWT_ExpiredToken(t *testing.T) {
	claims := Claims{
		Role: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := ParseJWT(token, testSecret); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	if _, err := ParseJWT(mustToken(t, "viewer"), []byte("other")); err == nil {
		t.Fatal("expected signature mismatch")
	}
}
