package laborder

import (
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

func (h *Handler) Register(g *echo.Group) {
	lg := g.Group("/laborders", auth.RequireRole(
		auth.RoleAdmin, auth.RoleDoctor, auth.RoleNurse, auth.RoleLabTech,
	))
	lg.GET("", h.list)
	lg.POST("", h.create)
	lg.GET("/:id", h.get)
	lg.PUT("/:id", h.update)
	lg.PATCH("/:id/status", h.transition)
	lg.GET("/:id/history", h.history)
	lg.DELETE("/:id", h.cancel)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) create(c echo.Context) error {
	o := &Order{}
	if err := c.Bind(o); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	orderedBy := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Place(c.Request().Context(), o, orderedBy); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Created(c, o)
}

func (h *Handler) get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, o)
}

func (h *Handler) update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	o := &Order{}
	if err := c.Bind(o); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	updated, err := h.svc.Amend(c.Request().Context(), id, o)
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
	changedBy := auth.UserIDFromContext(c.Request().Context())
	o, err := h.svc.Transition(c.Request().Context(), id, req.Status, changedBy)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, o)
}

func (h *Handler) history(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	changes, err := h.svc.History(c.Request().Context(), id)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, changes)
}

func (h *Handler) cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	changedBy := auth.UserIDFromContext(c.Request().Context())
	if _, err := h.svc.Cancel(c.Request().Context(), id, changedBy); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Deleted(c, "lab order cancelled")
}

func (h *Handler) list(c echo.Context) error {
	f := Filter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
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
	params := pagination.FromContext(c)
	orders, total, err := h.svc.List(c.Request().Context(), f, params.Limit, params.Offset())
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.List(c, orders, pagination.NewBlock(total, params), nil)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, respond.NewNotFoundError("lab order", c.Param("id"))
	}
	return id, nil
}
