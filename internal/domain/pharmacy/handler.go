package pharmacy

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

// Register mounts pharmacy and product routes under one RBAC group.
func (h *Handler) Register(g *echo.Group) {
	pg := g.Group("/pharmacies", auth.RequireRole(auth.RoleAdmin, auth.RolePharmacist))
	pg.GET("", h.list)
	pg.POST("", h.create)
	pg.GET("/:id", h.get)
	pg.PUT("/:id", h.update)
	pg.DELETE("/:id", h.delete)

	pg.GET("/:id/products", h.listProducts)
	pg.POST("/:id/products", h.addProduct)
	pg.GET("/:id/products/:productId", h.getProduct)
	pg.PUT("/:id/products/:productId", h.updateProduct)
	pg.DELETE("/:id/products/:productId", h.deleteProduct)
}

func (h *Handler) create(c echo.Context) error {
	p := &Pharmacy{}
	if err := c.Bind(p); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	createdBy := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), p, createdBy); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Created(c, p)
}

func (h *Handler) get(c echo.Context) error {
	id, err := pathID(c, "id", "pharmacy")
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
	id, err := pathID(c, "id", "pharmacy")
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	p := &Pharmacy{}
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
	id, err := pathID(c, "id", "pharmacy")
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Deleted(c, "pharmacy deactivated")
}

func (h *Handler) list(c echo.Context) error {
	f := Filter{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
	}
	params := pagination.FromContext(c)
	pharmacies, total, err := h.svc.List(c.Request().Context(), f, params.Limit, params.Offset())
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.List(c, pharmacies, pagination.NewBlock(total, params), nil)
}

func (h *Handler) addProduct(c echo.Context) error {
	id, err := pathID(c, "id", "pharmacy")
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	p := &Product{}
	if err := c.Bind(p); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	if err := h.svc.AddProduct(c.Request().Context(), id, p); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Created(c, p)
}

func (h *Handler) getProduct(c echo.Context) error {
	pharmacyID, productID, err := productIDs(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	p, err := h.svc.GetProduct(c.Request().Context(), pharmacyID, productID)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, p)
}

func (h *Handler) updateProduct(c echo.Context) error {
	pharmacyID, productID, err := productIDs(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	p := &Product{}
	if err := c.Bind(p); err != nil {
		return respond.Error(c, respond.NewValidationError(map[string]string{
			"body": "invalid request body",
		}), h.dev)
	}
	updated, err := h.svc.UpdateProduct(c.Request().Context(), pharmacyID, productID, p)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.OK(c, updated)
}

func (h *Handler) deleteProduct(c echo.Context) error {
	pharmacyID, productID, err := productIDs(c)
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	if err := h.svc.DeactivateProduct(c.Request().Context(), pharmacyID, productID); err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.Deleted(c, "product deactivated")
}

func (h *Handler) listProducts(c echo.Context) error {
	id, err := pathID(c, "id", "pharmacy")
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	f := ProductFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		LowStock: c.QueryParam("lowStock") == "true",
		Status:   c.QueryParam("status"),
	}
	params := pagination.FromContext(c)
	products, total, err := h.svc.ListProducts(c.Request().Context(), id, f, params.Limit, params.Offset())
	if err != nil {
		return respond.Error(c, err, h.dev)
	}
	return respond.List(c, products, pagination.NewBlock(total, params), nil)
}

func pathID(c echo.Context, param, kind string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, respond.NewNotFoundError(kind, c.Param(param))
	}
	return id, nil
}

func productIDs(c echo.Context) (pharmacyID, productID uuid.UUID, err error) {
	if pharmacyID, err = pathID(c, "id", "pharmacy"); err != nil {
		return
	}
	productID, err = pathID(c, "productId", "product")
	return
}
