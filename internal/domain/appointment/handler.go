package appointment

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/respond"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
	dev bool
}

func NewHandler(svc *Service, dev bool) *Handler {
	return &Handler{svc: svc, dev: dev}
}

// Register mounts the appointment routes. Patients may read their own
// schedule; writing stays with staff.
func (h *Handler) Register(g *echo.Group) {
	read := auth.RequireRole(
		auth.RoleAdmin, auth.RoleDoctor, auth.RoleNurse, auth.RoleReceptionist, auth.RolePatient,
	)
	write := auth.RequireRole(
		auth.RoleAdmin, auth.RoleDoctor, auth.RoleNurse, auth.RoleReceptionist,
	)

	ag := g.Group("/appointments")
	ag.GET("", h.list, read)
	ag.GET("/:id", h.get, read)
	ag.POST("", h.create, write)
	ag.PUT("/:id", h.update, write)
	ag.PATCH("/:id/status", h.transition, write)
	ag.DELETE("/:id", h.delete, write)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) create(c echo.Context) error {
	a := &Appointment{}
	if err := c.Bind(a); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	createdBy := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Book(c.Request().Context(), a, createdBy); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Created(c, a)
}

func (h *Handler) get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, a)
}

func (h *Handler) update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	a := &Appointment{}
	if err := c.Bind(a); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	updated, err := h.svc.Reschedule(c.Request().Context(), id, a)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, updated)
}

func (h *Handler) transition(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	req := statusRequest{}
	if err := c.Bind(&req); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	a, err := h.svc.Transition(c.Request().Context(), id, req.Status)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, a)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	deleted, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	if deleted {
		return respond.Deleted(c, "appointment deleted")
	}
	return respond.Deleted(c, "appointment cancelled")
}

func (h *Handler) list(c echo.Context) error {
	f := Filter{
		Status:   c.QueryParam("status"),
		DoctorID: c.QueryParam("doctor"),
	}
	if raw := c.QueryParam("patient"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return respond.Error(c, respond.NewValidationError(map[string]string{
				"patient": "must be a valid id",
			}), h.dev)
		}
		f.Patient = pid
	}
	var err error
	if f.DateFrom, err = parseTimeParam(c, "dateFrom"); err != nil {
		return respond.Error(c, err, h.dev)
	}
	if f.DateTo, err = parseTimeParam(c, "dateTo"); err != nil {
		return respond.Error(c, err, h.dev)
	}

	params := pagination.FromContext(c)
	appts, total, err := h.svc.List(c.Request().Context(), f, params.Limit, params.Offset())
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.List(c, appts, pagination.NewBlock(total, params), nil)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, respond.NewNotFoundError("appointment", c.Param("id"))
	}
	return id, nil
}

// parseTimeParam accepts either a date or a full RFC3339 timestamp.
func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, respond.NewValidationError(map[string]string{
			name: "must be a date or RFC3339 timestamp",
		})
	}
	return t, nil
}
