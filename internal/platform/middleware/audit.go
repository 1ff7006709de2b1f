package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vetclinic/clinic/internal/platform/auth"
)

// AuditEntry records who touched which clinical record.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	Resource   string // visits, triage, consultation, medical-record, prescriptions, patients
	VisitID    string
	PatientID  string
	Action     string // read, create, update, delete
	IPAddress  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries somewhere other than the log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

const apiPrefix = "/api/v1/"

// Audit logs every request under /api/v1/ that reads or changes visit or
// patient data. Entries are always logged; recorders, when given, also
// receive them.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if !strings.HasPrefix(path, apiPrefix) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			ctx := req.Context()
			entry := AuditEntry{
				UserID:     auth.UserIDFromContext(ctx),
				UserRoles:  auth.RolesFromContext(ctx),
				Action:     httpMethodToAction(req.Method),
				IPAddress:  c.RealIP(),
				Path:       path,
				Method:     req.Method,
				Timestamp:  time.Now().UTC(),
				StatusCode: status,
			}
			entry.RequestID, _ = c.Get("request_id").(string)
			entry.Resource, entry.VisitID, entry.PatientID = classifyPath(path)
			if entry.PatientID == "" {
				entry.PatientID = c.QueryParam("patient_id")
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "clinical_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("visit_id", entry.VisitID).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_access")

			return err
		}
	}
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// classifyPath names the resource a path addresses.
//
//	/api/v1/visits                          -> visits
//	/api/v1/visits/{id}/triage              -> triage, visit id
//	/api/v1/patients/{id}                   -> patients, patient id
//	/api/v1/schedule/slots                  -> schedule
func classifyPath(path string) (resource, visitID, patientID string) {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(path, apiPrefix), "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "unknown", "", ""
	}
	resource = segments[0]
	if len(segments) < 2 || !isUUID(segments[1]) {
		return resource, "", ""
	}
	switch resource {
	case "visits":
		visitID = segments[1]
		if len(segments) > 2 {
			resource = segments[2]
		}
	case "patients":
		patientID = segments[1]
	}
	return resource, visitID, patientID
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
