package audit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medxfer/medxfer/internal/platform/auth"
)

func government() auth.Identity {
	return auth.Identity{UserID: "gov-1", FullName: "Inspector Vale", Role: auth.RoleGovernment}
}

// Routes the request through RegisterRoutes so the role gate is exercised.
func doRequest(t *testing.T, svc *Service, ident *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs", nil)
	if ident != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *ident))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListAuditLogs(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	if err := svc.Append(nil, validEntry()); err != nil {
		t.Fatal(err)
	}

	ident := government()
	rec := doRequest(t, svc, &ident)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "City General Hospital") {
		t.Error("expected ledger entry in response")
	}
}

func TestHandler_ListAuditLogs_DoctorForbidden(t *testing.T) {
	svc := NewService(&mockRepo{})
	ident := auth.Identity{UserID: "doc-1", Role: auth.RoleDoctor}

	rec := doRequest(t, svc, &ident)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for doctor, got %d", rec.Code)
	}
}

func TestHandler_ListAuditLogs_AdminForbidden(t *testing.T) {
	svc := NewService(&mockRepo{})
	ident := auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}

	rec := doRequest(t, svc, &ident)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for admin, got %d", rec.Code)
	}
}

func TestHandler_ListAuditLogs_Unauthenticated(t *testing.T) {
	svc := NewService(&mockRepo{})

	rec := doRequest(t, svc, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
