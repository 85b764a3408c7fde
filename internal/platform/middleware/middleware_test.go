package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medxfer/medxfer/internal/platform/auth"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request id")
	}
}

func TestRequestID_HonorsIncoming(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("expected caller-supplied id, got %q", got)
	}
}

func TestRateLimit_EnforcesBurst(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected first 2 requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", codes[2])
	}
}

func TestRateLimit_PerCallerBuckets(t *testing.T) {
	asUser := func(user string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				ctx := auth.WithIdentity(c.Request().Context(), auth.Identity{
					UserID: user, Hospital: "City General Hospital", Role: auth.RoleDoctor,
				})
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}
		}
	}

	e := echo.New()
	limit := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})
	e.GET("/a", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, asUser("doc-a"), limit)
	e.GET("/b", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, asUser("doc-b"), limit)

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("/a"); code != http.StatusOK {
		t.Fatalf("first request for caller a: got %d", code)
	}
	if code := do("/a"); code != http.StatusTooManyRequests {
		t.Errorf("expected caller a throttled after burst, got %d", code)
	}
	// A noisy caller must not throttle anyone else.
	if code := do("/b"); code != http.StatusOK {
		t.Errorf("expected caller b unaffected, got %d", code)
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	e := echo.New()
	e.Use(Recovery(zerolog.Nop()))
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-panic-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "req-panic-1") {
		t.Errorf("expected request id in error body, got %s", rec.Body.String())
	}
}

func TestLogger_AttributesFacility(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(Logger(logger))
	e.GET("/", func(c echo.Context) error {
		ctx := auth.WithIdentity(c.Request().Context(), auth.Identity{
			UserID: "doc-1", Hospital: "Lakeside Regional Hospital", Role: auth.RoleDoctor,
		})
		c.SetRequest(c.Request().WithContext(ctx))
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	line := buf.String()
	if !strings.Contains(line, `"facility":"Lakeside Regional Hospital"`) {
		t.Errorf("expected facility in log line, got %s", line)
	}
	if !strings.Contains(line, `"role":"doctor"`) {
		t.Errorf("expected role in log line, got %s", line)
	}
}
