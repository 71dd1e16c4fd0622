package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	raw := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "0e7f2a64-9f9d-4c64-9a0e-0f5a9ad30001",
		Roles:  []string{"cashier"},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotRoles []string
	h := JWTMiddleware(testSecret)(func(c echo.Context) error {
		gotRoles = RolesFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "cashier" {
		t.Errorf("expected cashier role, got %v", gotRoles)
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	h := JWTMiddleware(testSecret)(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_Expired(t *testing.T) {
	e := echo.New()
	raw := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "0e7f2a64-9f9d-4c64-9a0e-0f5a9ad30001",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := e.NewContext(req, httptest.NewRecorder())

	h := JWTMiddleware(testSecret)(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, []string{"reception"})
	req = req.WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())

	h := RequireRole("reception", "cashier")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, []string{"admin"})
	req = req.WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())

	h := RequireRole("cashier")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Errorf("admin should bypass role check: %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRolesKey, []string{"nurse"})
	req = req.WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())

	h := RequireRole("cashier")(func(c echo.Context) error { return nil })
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestUserIDFromContext_Invalid(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDKey, "not-a-uuid")
	if id := UserIDFromContext(ctx); id.String() != "00000000-0000-0000-0000-000000000000" {
		t.Errorf("expected nil uuid for invalid value, got %s", id)
	}
}
