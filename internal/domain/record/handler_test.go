package record

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medxfer/medxfer/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := NewService(newMockRepo())
	return NewHandler(svc), echo.New()
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, ident auth.Identity) echo.Context {
	req = req.WithContext(auth.WithIdentity(req.Context(), ident))
	return e.NewContext(req, rec)
}

func TestHandler_CreateRecord(t *testing.T) {
	h, e := newTestHandler()

	body := `{"patient_identifier":"patient-4","diagnosis":"whiplash","prescription":"physiotherapy"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, testDoctor())

	if err := h.CreateRecord(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var view View
	json.Unmarshal(rec.Body.Bytes(), &view)
	if view.Diagnosis != "whiplash" {
		t.Errorf("expected diagnosis in response, got %q", view.Diagnosis)
	}
}

func TestHandler_CreateRecord_MissingDiagnosis(t *testing.T) {
	h, e := newTestHandler()

	body := `{"patient_identifier":"patient-4"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, testDoctor())

	if err := h.CreateRecord(c); err == nil {
		t.Error("expected error for missing diagnosis")
	}
}

func TestHandler_CreateRecord_Unauthenticated(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateRecord(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_ListMine(t *testing.T) {
	h, e := newTestHandler()
	doc := testDoctor()

	if _, err := h.svc.CreateRecord(nil, doc, "patient-1", Clinical{Diagnosis: "vertigo"}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/mine", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, doc)

	if err := h.ListMine(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "vertigo") {
		t.Error("expected owned record in response")
	}
}
