package scheduling

import (
	"net/http"
	"strconv"
	"time"

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
	g := api.Group("/schedule", auth.RequireRole(auth.StaffRoles...))
	g.GET("/slots", h.GetDailySlots)
	g.GET("/density", h.GetMonthDensity)
	g.GET("/stats", h.GetStats)
	g.GET("/today", h.GetTodayLoad)
}

func (h *Handler) GetDailySlots(c echo.Context) error {
	day, err := h.svc.clock.ParseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.GetDailySlots(c.Request().Context(), day)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetMonthDensity defaults to the current month.
func (h *Handler) GetMonthDensity(c echo.Context) error {
	now := h.svc.clock.Now()
	year, month := now.Year(), now.Month()
	if s := c.QueryParam("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		year = y
	}
	if s := c.QueryParam("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		month = time.Month(m)
	}
	out, err := h.svc.GetMonthDensity(c.Request().Context(), year, month)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetStats(c echo.Context) error {
	out, err := h.svc.GetSchedulingStats(c.Request().Context())
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetTodayLoad(c echo.Context) error {
	out, err := h.svc.GetTodayLoad(c.Request().Context())
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, out)
}
