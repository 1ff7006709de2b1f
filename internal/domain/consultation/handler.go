package consultation

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vetclinic/clinic/internal/platform/apperror"
	"github.com/vetclinic/clinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	vet := api.Group("", auth.RequireRole(auth.RoleVeterinarian))
	vet.POST("/visits/:id/consultation", h.CompleteConsultation)
	vet.POST("/visits/:id/prescriptions", h.IssuePrescription)

	clinical := api.Group("", auth.RequireRole(auth.ClinicalRoles...))
	clinical.GET("/visits/:id/medical-record", h.GetMedicalRecord)

	staff := api.Group("", auth.RequireRole(auth.StaffRoles...))
	staff.GET("/visits/:id/prescriptions", h.ListPrescriptions)
}

func (h *Handler) CompleteConsultation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.VisitID = id
	ctx := c.Request().Context()
	out, err := h.svc.CompleteConsultation(ctx, auth.CallerFromContext(ctx), req)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	code := http.StatusOK
	if out.Created {
		code = http.StatusCreated
	}
	return c.JSON(code, out)
}

func (h *Handler) GetMedicalRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetMedicalRecordForVisit(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) IssuePrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in PrescriptionInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p, err := h.svc.IssuePrescription(ctx, auth.CallerFromContext(ctx), id, in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListPrescriptionsForVisit(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}
