package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCaller_HasRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  []string
		ok    bool
	}{
		{"exact", []string{RoleVetNurse}, []string{RoleVetNurse}, true},
		{"one of", []string{RoleReceptionist}, StaffRoles, true},
		{"admin wildcard", []string{RoleAdmin}, []string{RoleVeterinarian}, true},
		{"missing", []string{RoleReceptionist}, ClinicalRoles, false},
		{"no roles", nil, []string{RoleVeterinarian}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Caller{ID: "u1", Roles: tt.roles}
			if got := c.HasRole(tt.want...); got != tt.ok {
				t.Errorf("HasRole(%v) with %v = %v, want %v", tt.want, tt.roles, got, tt.ok)
			}
		})
	}
}

func TestCaller_Capabilities(t *testing.T) {
	nurse := Caller{Roles: []string{RoleVetNurse}}
	if !nurse.IsClinician() {
		t.Error("expected vet nurse to be a clinician")
	}
	if nurse.IsVeterinarian() {
		t.Error("expected vet nurse not to be a veterinarian")
	}

	reception := Caller{Roles: []string{RoleReceptionist}}
	if reception.IsClinician() {
		t.Error("expected receptionist not to be a clinician")
	}

	vet := Caller{Roles: []string{RoleVeterinarian}}
	if !vet.IsClinician() || !vet.IsVeterinarian() {
		t.Error("expected veterinarian to hold both capabilities")
	}
}

func TestCallerFromContext_RoundTrip(t *testing.T) {
	ctx := WithCaller(context.Background(), Caller{ID: "vet-7", Roles: []string{RoleVeterinarian}})
	c := CallerFromContext(ctx)
	if c.ID != "vet-7" {
		t.Errorf("expected vet-7, got %q", c.ID)
	}
	if len(c.Roles) != 1 || c.Roles[0] != RoleVeterinarian {
		t.Errorf("unexpected roles %v", c.Roles)
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithCaller(req.Context(), Caller{ID: "u", Roles: []string{RoleVeterinarian}}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(RoleVeterinarian, RoleVetNurse)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithCaller(req.Context(), Caller{ID: "u", Roles: []string{RoleReceptionist}}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(RoleVeterinarian)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	err := h(c)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_NoCaller(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(StaffRoles...)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err == nil {
		t.Fatal("expected error without caller")
	}
}
