package patient

import (
	"net/http"
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

// Register mounts the patient routes. The whole group is limited to staff
// roles that work the front desk or the ward.
func (h *Handler) Register(g *echo.Group) {
	pg := g.Group("/patients", auth.RequireRole(
		auth.RoleAdmin, auth.RoleDoctor, auth.RoleNurse, auth.RoleReceptionist,
	))
	pg.GET("", h.list)
	pg.POST("", h.create)
	pg.GET("/check", h.check)
	pg.GET("/:id", h.get)
	pg.PUT("/:id", h.update)
	pg.DELETE("/:id", h.delete)
	pg.POST("/:id/reactivate", h.reactivate)
}

func (h *Handler) create(c echo.Context) error {
	p := &Patient{}
	if err := c.Bind(p); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}

	createdBy := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Register(c.Request().Context(), p, createdBy); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Created(c, p)
}

func (h *Handler) get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, p)
}

func (h *Handler) update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	p := &Patient{}
	if err := c.Bind(p); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	updated, err := h.svc.Update(c.Request().Context(), id, p)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, updated)
}

func (h *Handler) delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Deleted(c, "patient deactivated")
}

func (h *Handler) reactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	if err := h.svc.Reactivate(c.Request().Context(), id); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Deleted(c, "patient reactivated")
}

func (h *Handler) list(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}

	params := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), f, params.Limit, params.Offset())
	if err != nil {
		return respond.Error(c, err, h.dev)
	}

	var stats *Statistics
	if c.QueryParam("stats") == "true" {
		if stats, err = h.svc.Stats(c.Request().Context(), f); err != nil {
			return respond.Error(c, err, h.dev)
		}
	}

	block := pagination.NewBlock(total, params)
	if stats != nil {
		return respond.List(c, patients, block, stats)
	}
	return respond.List(c, patients, block, nil)
}

// check answers availability queries for nic, email and phone. Any subset of
// the three may be asked in one call.
func (h *Handler) check(c echo.Context) error {
	ctx := c.Request().Context()
	result := map[string]bool{}
	for _, field := range []string{"nic", "email", "phone"} {
		value := c.QueryParam(field)
		if value == "" {
			continue
		}
		available, err := h.svc.CheckAvailability(ctx, field, value)
		if err != nil {
			return respond.Error(c, err, h.dev)
		}
		result[field] = available
	}
	if len(result) == 0 {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"query": "one of nic, email or phone is required",
		}), h.dev)
	}
	return c.JSON(http.StatusOK, respond.Envelope{Success: true, Data: result})
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, respond.NewNotFoundError("patient", c.Param("id"))
	}
	return id, nil
}

func filterFromQuery(c echo.Context) (Filter, error) {
	f := Filter{
		Search:     c.QueryParam("search"),
		Gender:     c.QueryParam("gender"),
		BloodGroup: c.QueryParam("bloodGroup"),
		Status:     c.QueryParam("status"),
		SortBy:     c.QueryParam("sortBy"),
		SortOrder:  c.QueryParam("sortOrder"),
	}

	if group := c.QueryParam("ageGroup"); group != "" {
		from, to, ok := BirthDateRange(group, time.Now())
		if !ok {
			return f, respond.NewValidationError(map[string]string{
				"ageGroup": "unknown age group",
			})
		}
		f.BornFrom, f.BornTo = from, to
	}

	var err error
	if f.RegisteredFrom, err = parseDateParam(c, "registeredFrom"); err != nil {
		return f, err
	}
	if f.RegisteredTo, err = parseDateParam(c, "registeredTo"); err != nil {
		return f, err
	}
	return f, nil
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
