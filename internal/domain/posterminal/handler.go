package posterminal

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicapp/clinicapp/internal/platform/auth"
	"github.com/clinicapp/clinicapp/internal/platform/validation"
	"github.com/clinicapp/clinicapp/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/pos-terminals", h.Create)
	admin.PUT("/pos-terminals/:id", h.Update)
	admin.DELETE("/pos-terminals/:id", h.Delete)
	admin.POST("/pos-terminals/:id/default", h.SetAsDefault)
	admin.POST("/pos-terminals/:id/activate", h.Activate)
	admin.POST("/pos-terminals/:id/deactivate", h.Deactivate)

	staff := api.Group("", auth.RequireRole("admin", "cashier"))
	staff.GET("/pos-terminals", h.List)
	staff.GET("/pos-terminals/default", h.GetDefault)
	staff.GET("/pos-terminals/:id", h.Get)
}

func (h *Handler) Create(c echo.Context) error {
	var t PosTerminal
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.CreatedBy = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), &t); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "terminal not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) GetDefault(c echo.Context) error {
	t, err := h.svc.GetDefault(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no default terminal configured")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var t PosTerminal
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = id
	uid := auth.UserIDFromContext(c.Request().Context())
	t.UpdatedBy = &uid
	if err := h.svc.Update(c.Request().Context(), &t); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "terminal not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) SetAsDefault(c echo.Context) error {
	return h.action(c, h.svc.SetAsDefault)
}

func (h *Handler) Activate(c echo.Context) error {
	return h.action(c, h.svc.Activate)
}

func (h *Handler) Deactivate(c echo.Context) error {
	return h.action(c, h.svc.Deactivate)
}

func (h *Handler) Delete(c echo.Context) error {
	return h.action(c, h.svc.Delete)
}

func (h *Handler) action(c echo.Context, fn func(ctx context.Context, id, by uuid.UUID) error) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := fn(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "terminal not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
