package cashsession

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

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
	g := api.Group("", auth.RequireRole("admin", "cashier"))
	g.POST("/cash-sessions", h.Open)
	g.GET("/cash-sessions", h.ListMine)
	g.GET("/cash-sessions/active", h.GetActive)
	g.GET("/cash-sessions/:id", h.Get)
	g.POST("/cash-sessions/:id/income", h.PostIncome)
	g.POST("/cash-sessions/:id/expense", h.PostExpense)
	g.POST("/cash-sessions/:id/close", h.Close)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/cash-sessions/:id", h.Delete)
	admin.GET("/cash-sessions/statistics", h.Statistics)
}

type openRequest struct {
	InitialCashAmount decimal.Decimal `json:"initial_cash_amount"`
}

func (h *Handler) Open(c echo.Context) error {
	var req openRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	session, err := h.svc.Open(c.Request().Context(), userID, req.InitialCashAmount)
	if err != nil {
		if errors.Is(err, ErrActiveSessionExists) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	session, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "cash session not found")
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) GetActive(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	session, err := h.svc.GetActiveByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no active cash session")
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListByUser(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) PostIncome(c echo.Context) error {
	return h.post(c, h.svc.PostIncome)
}

func (h *Handler) PostExpense(c echo.Context) error {
	return h.post(c, h.svc.PostExpense)
}

func (h *Handler) post(c echo.Context, fn func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := fn(c.Request().Context(), id, req.Amount); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "active cash session not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type closeRequest struct {
	FinalCashAmount decimal.Decimal `json:"final_cash_amount"`
}

func (h *Handler) Close(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req closeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	session, err := h.svc.Close(c.Request().Context(), id, req.FinalCashAmount, userID)
	if err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cash session not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, session)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cash session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Statistics(c echo.Context) error {
	from, to, err := parseRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stats, err := h.svc.GetStatistics(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// parseRange defaults to the last 30 days when no bounds are given.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	var err error
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339, fromStr); err != nil {
			return from, to, err
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339, toStr); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}
