package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testKey)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func echoIdentity(c echo.Context) error {
	ident, ok := IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "no identity")
	}
	return c.JSON(http.StatusOK, ident)
}

func serveWithJWT(t *testing.T, cfg JWTConfig, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Use(JWTMiddleware(cfg))
	e.GET("/", echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "doc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		FullName: "Dr. Riley",
		Hospital: "City General Hospital",
		Role:     RoleDoctor,
	})

	rec := serveWithJWT(t, JWTConfig{SigningKey: testKey}, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	rec := serveWithJWT(t, JWTConfig{SigningKey: testKey}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "doc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleDoctor,
	})

	rec := serveWithJWT(t, JWTConfig{SigningKey: []byte("another-key-another-key-another!")}, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %d", rec.Code)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "doc-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: RoleDoctor,
	})

	rec := serveWithJWT(t, JWTConfig{SigningKey: testKey}, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestJWTMiddleware_IssuerMismatch(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "doc-1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleDoctor,
	})

	rec := serveWithJWT(t, JWTConfig{SigningKey: testKey, Issuer: "medxfer"}, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for issuer mismatch, got %d", rec.Code)
	}
}

func TestDevAuthMiddleware_GrantsDefaultIdentity(t *testing.T) {
	e := echo.New()
	e.Use(DevAuthMiddleware())
	e.GET("/", func(c echo.Context) error {
		ident, ok := IdentityFromContext(c.Request().Context())
		if !ok || ident.Role != RoleDoctor {
			t.Errorf("expected default doctor identity, got %+v", ident)
		}
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
