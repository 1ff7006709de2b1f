package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vetclinic/clinic/internal/platform/auth"
)

func runAudit(t *testing.T, method, target string, status int) (AuditEntry, bool) {
	t.Helper()
	var got AuditEntry
	seen := false
	rec := AuditRecorderFunc(func(e AuditEntry) error {
		got, seen = e, true
		return nil
	})

	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req = req.WithContext(auth.WithCaller(req.Context(), auth.Caller{ID: "nurse-3", Roles: []string{auth.RoleVetNurse}}))
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("request_id", "req-abc")

	h := Audit(zerolog.Nop(), rec)(func(c echo.Context) error { return c.NoContent(status) })
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return got, seen
}

func TestAudit_TriageWrite(t *testing.T) {
	visitID := uuid.NewString()
	entry, ok := runAudit(t, http.MethodPost, "/api/v1/visits/"+visitID+"/triage", http.StatusCreated)
	if !ok {
		t.Fatal("expected entry to be recorded")
	}
	if entry.Resource != "triage" || entry.VisitID != visitID || entry.Action != "create" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.UserID != "nurse-3" || entry.RequestID != "req-abc" || entry.StatusCode != http.StatusCreated {
		t.Errorf("unexpected identity fields %+v", entry)
	}
}

func TestAudit_PatientRead(t *testing.T) {
	patientID := uuid.NewString()
	entry, ok := runAudit(t, http.MethodGet, "/api/v1/patients/"+patientID, http.StatusOK)
	if !ok {
		t.Fatal("expected entry to be recorded")
	}
	if entry.Resource != "patients" || entry.PatientID != patientID || entry.Action != "read" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestAudit_PatientFromQuery(t *testing.T) {
	entry, _ := runAudit(t, http.MethodGet, "/api/v1/visits?patient_id=p-1", http.StatusOK)
	if entry.Resource != "visits" || entry.PatientID != "p-1" || entry.VisitID != "" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestAudit_IgnoresNonAPIPaths(t *testing.T) {
	if _, ok := runAudit(t, http.MethodGet, "/health", http.StatusOK); ok {
		t.Error("health checks must not be audited")
	}
}

func TestAudit_RecorderFailureDoesNotFailRequest(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil), httptest.NewRecorder())
	failing := AuditRecorderFunc(func(AuditEntry) error { return errors.New("disk full") })

	h := Audit(zerolog.Nop(), failing)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClassifyPath(t *testing.T) {
	id := uuid.NewString()
	cases := []struct {
		path, resource, visit string
	}{
		{"/api/v1/visits", "visits", ""},
		{"/api/v1/visits/" + id, "visits", id},
		{"/api/v1/visits/" + id + "/consultation", "consultation", id},
		{"/api/v1/visits/" + id + "/medical-record", "medical-record", id},
		{"/api/v1/schedule/slots", "schedule", ""},
		{"/api/v1/", "unknown", ""},
	}
	for _, tc := range cases {
		resource, visit, _ := classifyPath(tc.path)
		if resource != tc.resource || visit != tc.visit {
			t.Errorf("%s: got (%s, %s), want (%s, %s)", tc.path, resource, visit, tc.resource, tc.visit)
		}
	}
}
