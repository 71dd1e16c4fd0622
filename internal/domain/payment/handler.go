package payment

import (
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
	cashier := api.Group("", auth.RequireRole("admin", "cashier"))
	cashier.POST("/payments/cash", h.PayCash)
	cashier.POST("/payments/pos", h.PayPos)
	cashier.POST("/payments/online", h.PayOnline)
	cashier.POST("/payments/debt", h.SettleDebt)
	cashier.POST("/payments/:id/confirm", h.ConfirmPos)
	cashier.GET("/payments/:id", h.Get)
	cashier.GET("/receptions/:receptionId/payments", h.ListByReception)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/payments/:id", h.Delete)
	admin.POST("/payment-gateways", h.CreateGateway)
	admin.GET("/payment-gateways", h.ListGateways)
	admin.GET("/payment-gateways/:id", h.GetGateway)
	admin.PUT("/payment-gateways/:id", h.UpdateGateway)
	admin.POST("/payment-gateways/:id/default", h.SetDefaultGateway)
	admin.DELETE("/payment-gateways/:id", h.DeleteGateway)
}

// respondErr maps service errors onto the uniform envelope: accumulated
// validation failures → 422, unimplemented → 501, missing → 404.
func respondErr(c echo.Context, err error) error {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return c.JSON(http.StatusUnprocessableEntity,
			reqErr.Errs.Result("", "payment request rejected"))
	}
	if errors.Is(err, validation.ErrNotImplemented) {
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	}
	if errors.Is(err, validation.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) PayCash(c echo.Context) error {
	var req CashPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.CreatedByUserID = auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.PayCash(c.Request().Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) PayPos(c echo.Context) error {
	var req PosPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.CreatedByUserID = auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.PayPos(c.Request().Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) PayOnline(c echo.Context) error {
	var req OnlinePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.CreatedByUserID = auth.UserIDFromContext(c.Request().Context())
	if req.UserIPAddress == "" {
		req.UserIPAddress = c.RealIP()
	}
	p, err := h.svc.PayOnline(c.Request().Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) SettleDebt(c echo.Context) error {
	var req DebtSettlementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.CreatedByUserID = auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.SettleDebt(c.Request().Context(), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ConfirmPos(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.ConfirmPos(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, validation.OK("payment confirmed"))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "payment not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListByReception(c echo.Context) error {
	receptionID, err := uuid.Parse(c.Param("receptionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reception id")
	}
	items, err := h.svc.ListByReception(c.Request().Context(), receptionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Gateways --

func (h *Handler) CreateGateway(c echo.Context) error {
	var g PaymentGateway
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g.CreatedBy = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.CreateGateway(c.Request().Context(), &g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) GetGateway(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	g, err := h.svc.GetGateway(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "gateway not found")
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) ListGateways(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListGateways(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateGateway(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var g PaymentGateway
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g.ID = id
	uid := auth.UserIDFromContext(c.Request().Context())
	g.UpdatedBy = &uid
	if err := h.svc.UpdateGateway(c.Request().Context(), &g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) SetDefaultGateway(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.SetDefaultGateway(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "gateway not found")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteGateway(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.DeleteGateway(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "gateway not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
