package visit

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vetclinic/clinic/internal/platform/apperror"
	"github.com/vetclinic/clinic/internal/platform/auth"
	"github.com/vetclinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	book := api.Group("", auth.RequireRole(append(auth.StaffRoles, auth.RoleClient)...))
	book.POST("/visits", h.BookVisit)

	staff := api.Group("", auth.RequireRole(auth.StaffRoles...))
	staff.GET("/visits", h.ListVisits)
	staff.GET("/visits/:id", h.GetVisit)
	staff.POST("/visits/:id/status", h.TransitionVisit)
}

func (h *Handler) BookVisit(c echo.Context) error {
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	v, err := h.svc.BookVisit(ctx, auth.CallerFromContext(ctx), req)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

// ListVisits accepts date (a single clinic day) or from/to (inclusive days),
// plus status, clinician_id and patient_id filters.
func (h *Handler) ListVisits(c echo.Context) error {
	pg := pagination.FromContext(c)
	f, err := h.filterFromQuery(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.ListVisits(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithNext(c.Request().URL))
}

func (h *Handler) filterFromQuery(c echo.Context) (Filter, error) {
	var f Filter
	clk := h.svc.clock
	if d := c.QueryParam("date"); d != "" {
		day, err := clk.ParseDate(d)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		f.From, f.To = clk.DayBounds(day)
	}
	if d := c.QueryParam("from"); d != "" {
		day, err := clk.ParseDate(d)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		f.From = day
	}
	if d := c.QueryParam("to"); d != "" {
		day, err := clk.ParseDate(d)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		_, f.To = clk.DayBounds(day)
	}
	if s := c.QueryParam("status"); s != "" {
		st, ok := ParseStatus(s)
		if !ok {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		f.Status = st
	}
	if s := c.QueryParam("clinician_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid clinician_id")
		}
		f.ClinicianID = id
	}
	if s := c.QueryParam("patient_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = id
	}
	return f, nil
}

type transitionRequest struct {
	Status             string     `json:"status"`
	CancellationReason string     `json:"cancellation_reason"`
	CheckedInAt        *time.Time `json:"checked_in_at"`
}

func (h *Handler) TransitionVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.TransitionVisit(c.Request().Context(), id, req.Status, TransitionInput{
		Reason:      req.CancellationReason,
		CheckedInAt: req.CheckedInAt,
	})
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}
