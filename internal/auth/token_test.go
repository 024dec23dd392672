package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TestIssueAndParseAccessToken проверяет выпуск и проверку токена.
func TestIssueAndParseAccessToken(t *testing.T) {
	manager := NewTokenManager("secret", "household-assistant", time.Minute)
	userID := uuid.New()

	token, expiresAt, err := manager.IssueAccessToken(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}

	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}
}

// TestParseAccessTokenRejectsForeignIssuer проверяет проверку издателя и ключа.
func TestParseAccessTokenRejectsForeignIssuer(t *testing.T) {
	other := NewTokenManager("secret", "someone-else", time.Minute)
	token, _, err := other.IssueAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	manager := NewTokenManager("secret", "household-assistant", time.Minute)
	if _, err := manager.ParseAccessToken(token); err == nil {
		t.Fatal("expected issuer mismatch")
	}

	wrongKey := NewTokenManager("other-secret", "household-assistant", time.Minute)
	if _, err := wrongKey.ParseAccessToken(mustIssue(t, manager)); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

// TestJWTMiddleware проверяет, что middleware кладет user_id в контекст.
func TestJWTMiddleware(t *testing.T) {
	manager := NewTokenManager("secret", "household-assistant", time.Minute)
	userID := uuid.New()
	token, _, err := manager.IssueAccessToken(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	handler := JWTMiddleware(manager)(func(c echo.Context) error {
		got, ok := UserIDFromContext(c)
		if !ok || got != userID {
			t.Fatalf("expected user %s in context, got %s (ok=%v)", userID, got, ok)
		}
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	err = handler(e.NewContext(req, httptest.NewRecorder()))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func mustIssue(t *testing.T, manager *TokenManager) string {
	t.Helper()

	token, _, err := manager.IssueAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// TestJWTMiddlewareQueryToken проверяет токен в параметре запроса для GET и
// отказ для других методов.
func TestJWTMiddlewareQueryToken(t *testing.T) {
	manager := NewTokenManager("secret", "household-assistant", time.Minute)
	token := mustIssue(t, manager)

	e := echo.New()
	handler := JWTMiddleware(manager)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/stream?access_token="+token, nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/commands?access_token="+token, nil)
	err := handler(e.NewContext(req, httptest.NewRecorder()))
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for POST with query token, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	err = handler(e.NewContext(req, httptest.NewRecorder()))
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %v", err)
	}
}
