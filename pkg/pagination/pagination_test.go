package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestFromContext_Caps(t *testing.T) {
	p := paramsFor(t, "limit=5000&offset=40")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset != 40 {
		t.Errorf("expected offset 40, got %d", p.Offset)
	}
}

func TestFromContext_Invalid(t *testing.T) {
	p := paramsFor(t, "limit=-1&offset=-5")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected sanitized params, got %+v", p)
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]int{1, 2}, 10, 2, 0)
	if !r.HasMore {
		t.Error("expected has_more for partial page")
	}

	r = NewResponse([]int{1, 2}, 2, 20, 0)
	if r.HasMore {
		t.Error("expected no more results")
	}
}

func TestParams_Next(t *testing.T) {
	p := Params{Limit: 20, Offset: 20}
	if !p.HasNext(100) {
		t.Error("expected next page")
	}
	if p.HasNext(40) {
		t.Error("expected no next page at boundary")
	}
	if p.NextOffset() != 40 {
		t.Errorf("expected next offset 40, got %d", p.NextOffset())
	}
}
