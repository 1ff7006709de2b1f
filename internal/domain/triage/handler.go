package triage

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
	staff := api.Group("", auth.RequireRole(auth.StaffRoles...))
	staff.GET("/consultations/queue", h.GetConsultationQueue)

	clinical := api.Group("", auth.RequireRole(auth.ClinicalRoles...))
	clinical.POST("/visits/:id/triage", h.RecordTriage)
	clinical.GET("/visits/:id/triage", h.ListTriage)
}

func (h *Handler) GetConsultationQueue(c echo.Context) error {
	day, err := h.svc.clock.ParseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items := h.svc.ListConsultationQueue(c.Request().Context(), day)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":  h.svc.clock.DateKey(day),
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) RecordTriage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Vitals
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	rec, err := h.svc.RecordTriage(ctx, auth.CallerFromContext(ctx), id, in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListTriage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListTriageForVisit(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}
