package reception

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
	g := api.Group("", auth.RequireRole("admin", "reception"))
	g.POST("/receptions", h.Create)
	g.GET("/receptions", h.List)
	g.GET("/receptions/:id", h.Get)
	g.DELETE("/receptions/:id", h.Delete)
	g.POST("/receptions/:id/charges", h.AddCharge)
	g.GET("/receptions/:id/charges", h.ListCharges)
	g.DELETE("/receptions/:id/charges/:chargeId", h.RemoveCharge)
	g.POST("/receptions/:id/calculate", h.Calculate)
	g.POST("/receptions/:id/calculate/clear", h.ClearCalculation)
	g.POST("/receptions/:id/cancel", h.Cancel)

	cashier := api.Group("", auth.RequireRole("admin", "cashier"))
	cashier.POST("/receptions/:id/settle", h.Settle)
}

func (h *Handler) Create(c echo.Context) error {
	var rec Reception
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec.CreatedBy = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), &rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "reception not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	if q := c.QueryParam("patient_id"); q != "" {
		patientID, err := uuid.Parse(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AddCharge(c echo.Context) error {
	receptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var charge ServiceCharge
	if err := c.Bind(&charge); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	charge.ReceptionID = receptionID
	charge.CreatedBy = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.AddCharge(c.Request().Context(), &charge); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "reception not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, charge)
}

func (h *Handler) ListCharges(c echo.Context) error {
	receptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListCharges(c.Request().Context(), receptionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) RemoveCharge(c echo.Context) error {
	receptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	chargeID, err := uuid.Parse(c.Param("chargeId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid charge id")
	}
	if err := h.svc.RemoveCharge(c.Request().Context(), receptionID, chargeID); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Calculate(c echo.Context) error {
	receptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Calculate(c.Request().Context(), receptionID, uid)
	if err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "reception not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ClearCalculation(c echo.Context) error {
	return h.transition(c, h.svc.ClearCalculation)
}

func (h *Handler) Settle(c echo.Context) error {
	return h.transition(c, h.svc.Settle)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.transition(c, h.svc.Cancel)
}

// transition runs one of the status-change operations that share the same
// request shape and error mapping.
func (h *Handler) transition(c echo.Context, fn func(ctx context.Context, receptionID, updatedBy uuid.UUID) error) error {
	receptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := fn(c.Request().Context(), receptionID, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "reception not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "reception not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
