package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/ports"
)

type AttributeHandler struct {
	attributes ports.AttributeService
}

func NewAttributeHandler(attributes ports.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributes: attributes}
}

type writeAttributeRequest struct {
	Key   string `json:"key"   validate:"required"`
	Value string `json:"value"`
}

// List handles GET /v1/clients/:id/attributes.
func (h *AttributeHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	views, err := h.attributes.ListForClient(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": views})
}

// Write handles PUT /v1/clients/:id/attributes.
func (h *AttributeHandler) Write(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req writeAttributeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.attributes.Write(c.Request().Context(), ports.WriteAttributeInput{
		Principal: p,
		ClientID:  c.Param("id"),
		Key:       req.Key,
		Value:     req.Value,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
