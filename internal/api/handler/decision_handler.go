package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// DecisionHandler exposes the access resolver as an explicit question
// surface, so UIs can gate controls without duplicating policy.
type DecisionHandler struct {
	resolver ports.ResolverService
}

func NewDecisionHandler(resolver ports.ResolverService) *DecisionHandler {
	return &DecisionHandler{resolver: resolver}
}

type decisionRequest struct {
	Capability     string `json:"capability"      validate:"required"`
	ClientID       string `json:"client_id,omitempty"`
	ViewingProgram string `json:"viewing_program,omitempty"`
}

// Decide handles POST /v1/decisions.
func (h *DecisionHandler) Decide(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cap := access.Capability(req.Capability)
	if !cap.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown capability")
	}

	decision, err := h.resolver.Decide(c.Request().Context(), ports.DecisionInput{
		Principal:      p,
		Capability:     cap,
		ClientID:       req.ClientID,
		ViewingProgram: req.ViewingProgram,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, decision)
}
