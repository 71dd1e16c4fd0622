package insurance

import (
	"errors"
	"net/http"

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
	admin := api.Group("", auth.RequireRole("admin"))
	admin.POST("/insurance/plans", h.CreatePlan)
	admin.PUT("/insurance/plans/:id", h.UpdatePlan)
	admin.DELETE("/insurance/plans/:id", h.DeletePlan)

	staff := api.Group("", auth.RequireRole("admin", "reception"))
	staff.GET("/insurance/plans", h.ListPlans)
	staff.GET("/insurance/plans/:id", h.GetPlan)
	staff.POST("/patients/:patientId/insurances", h.Assign)
	staff.GET("/patients/:patientId/insurances", h.ListForPatient)
	staff.PUT("/patients/:patientId/insurances/:id/primary", h.SetPrimary)
	staff.DELETE("/patients/:patientId/insurances/:id", h.Remove)
	staff.POST("/patients/:patientId/insurances/calculate", h.Calculate)
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var p InsurancePlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.CreatedBy = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.CreatePlan(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "plan not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPlans(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p InsurancePlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	uid := auth.UserIDFromContext(c.Request().Context())
	p.UpdatedBy = &uid
	if err := h.svc.UpdatePlan(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.DeletePlan(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "plan not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Assign(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var pi PatientInsurance
	if err := c.Bind(&pi); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pi.PatientID = patientID
	pi.CreatedBy = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.AssignToPatient(c.Request().Context(), &pi); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, pi)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	items, err := h.svc.ListForPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) SetPrimary(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.SetPrimary(c.Request().Context(), patientID, id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "insurance record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Remove(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	uid := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.RemoveFromPatient(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "insurance record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type calculateRequest struct {
	ServiceAmount decimal.Decimal `json:"service_amount"`
}

func (h *Handler) Calculate(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req calculateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.CalculateForPatient(c.Request().Context(), patientID, req.ServiceAmount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
