package analytics

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/respond"
)

type Handler struct {
	repo Repository
	dev  bool
}

func NewHandler(repo Repository, dev bool) *Handler {
	return &Handler{repo: repo, dev: dev}
}

func (h *Handler) Register(g *echo.Group) {
	ag := g.Group("/analytics", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	ag.GET("/doctors", h.doctors)
	ag.GET("/dashboard", h.dashboard)
}

func (h *Handler) doctors(c echo.Context) error {
	var from, to time.Time
	var err error
	if from, err = parseDateParam(c, "dateFrom"); err != nil {
		return respond.Error(c, err, h.dev)
	}
	if to, err = parseDateParam(c, "dateTo"); err != nil {
		return respond.Error(c, err, h.dev)
	}

	stats, err := h.repo.DoctorStats(c.Request().Context(), from, to)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, stats)
}

func (h *Handler) dashboard(c echo.Context) error {
	d, err := h.repo.Dashboard(c.Request().Context())
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, d)
}

func parseDateParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, respond.NewValidationError(map[string]string{
			name: "must be a date in YYYY-MM-DD format",
		})
	}
	return t, nil
}
