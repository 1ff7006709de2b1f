package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Staff roles carried in the "roles" claim.
const (
	RoleAdmin        = "admin"
	RoleVeterinarian = "veterinarian"
	RoleVetNurse     = "vet_nurse"
	RoleReceptionist = "receptionist"
	// RoleClient is a pet owner booking through the self-service portal.
	RoleClient = "client"
)

// ClinicalRoles may record triage and read clinical records.
var ClinicalRoles = []string{RoleVeterinarian, RoleVetNurse}

// StaffRoles covers every dashboard user.
var StaffRoles = []string{RoleVeterinarian, RoleVetNurse, RoleReceptionist}

// Caller is the identity of whoever invoked an operation, as supplied by the
// identity provider. Services take it as an explicit capability.
type Caller struct {
	ID    string
	Roles []string
}

// HasRole reports whether the caller holds any of roles. Admin holds every role.
func (c Caller) HasRole(roles ...string) bool {
	for _, has := range c.Roles {
		if has == RoleAdmin {
			return true
		}
		for _, want := range roles {
			if has == want {
				return true
			}
		}
	}
	return false
}

// IsStaff reports whether the caller works at the clinic.
func (c Caller) IsStaff() bool { return c.HasRole(StaffRoles...) }

// IsClinician reports whether the caller may perform triage.
func (c Caller) IsClinician() bool { return c.HasRole(ClinicalRoles...) }

// IsVeterinarian reports whether the caller may complete consultations and prescribe.
func (c Caller) IsVeterinarian() bool { return c.HasRole(RoleVeterinarian) }

// WithCaller stores the caller on ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, c.ID)
	return context.WithValue(ctx, UserRolesKey, c.Roles)
}

// CallerFromContext rebuilds the caller stored by the auth middleware.
func CallerFromContext(ctx context.Context) Caller {
	return Caller{ID: UserIDFromContext(ctx), Roles: RolesFromContext(ctx)}
}

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CallerFromContext(c.Request().Context()).HasRole(roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
