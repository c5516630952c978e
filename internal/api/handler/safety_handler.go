package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/ports"
)

type SafetyHandler struct {
	safety ports.SafetyService
}

func NewSafetyHandler(safety ports.SafetyService) *SafetyHandler {
	return &SafetyHandler{safety: safety}
}

type blockRequest struct {
	BlockedPrincipalID string `json:"blocked_principal_id" validate:"required"`
	ClientID           string `json:"client_id"            validate:"required"`
	Reason             string `json:"reason"               validate:"required"`
}

type removalRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	Reason   string `json:"reason"    validate:"required"`
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// Block handles POST /v1/safety/blocks.
func (h *SafetyHandler) Block(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	block, err := h.safety.Block(c.Request().Context(), ports.BlockClientInput{
		Principal:          p,
		BlockedPrincipalID: req.BlockedPrincipalID,
		ClientID:           req.ClientID,
		Reason:             req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, block)
}

// Unblock handles DELETE /v1/safety/blocks/:id.
func (h *SafetyHandler) Unblock(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.safety.Unblock(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetDVFlag handles POST /v1/safety/clients/:id/dv-flag.
func (h *SafetyHandler) SetDVFlag(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.safety.SetDVFlag(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestRemoval handles POST /v1/safety/dv-removals.
func (h *SafetyHandler) RequestRemoval(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req removalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request, err := h.safety.RequestRemoval(c.Request().Context(), p, req.ClientID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, request)
}

// ReviewRemoval handles POST /v1/safety/dv-removals/:id/review.
func (h *SafetyHandler) ReviewRemoval(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.safety.ReviewRemoval(c.Request().Context(), p, c.Param("id"), req.Approve); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPendingRemovals handles GET /v1/safety/dv-removals.
func (h *SafetyHandler) ListPendingRemovals(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	pending, err := h.safety.ListPendingRemovals(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": pending})
}
