package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string, secret string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pacientes", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, RoleFromContext(c.Request().Context()))
	}
	return rec, mw(handler)(c)
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	rec, err := runAuth(t, JWTMiddleware(testSecret), "Bearer "+signToken(t, "medico", testSecret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "medico" {
		t.Errorf("expected role medico in context, got %q", rec.Body.String())
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	_, err := runAuth(t, JWTMiddleware(testSecret), "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	_, err := runAuth(t, JWTMiddleware(testSecret), "Bearer "+signToken(t, "medico", "other-secret"))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDevAuthMiddleware_GrantsAdmin(t *testing.T) {
	rec, err := runAuth(t, DevAuthMiddleware(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "admin" {
		t.Errorf("expected admin role, got %q", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	cases := []struct {
		role    string
		allowed bool
	}{
		{"medico", true},
		{"admin", true},
		{"recepcion", false},
		{"", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/medicos", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		chain := DevAuthMiddleware()
		if tc.role != "admin" {
			chain = JWTMiddleware(testSecret)
			req.Header.Set("Authorization", "Bearer "+signToken(t, tc.role, testSecret))
		}
		err := chain(RequireRole("medico", "enfermeria")(handler))(c)

		if tc.allowed && err != nil {
			t.Errorf("role %q: expected access, got %v", tc.role, err)
		}
		if !tc.allowed {
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusForbidden {
				t.Errorf("role %q: expected 403, got %v", tc.role, err)
			}
		}
	}
}
