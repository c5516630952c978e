package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/ports"
)

// ToggleHandler is the admin configuration surface for agency-wide toggles.
type ToggleHandler struct {
	toggles ports.ToggleService
}

func NewToggleHandler(toggles ports.ToggleService) *ToggleHandler {
	return &ToggleHandler{toggles: toggles}
}

type setToggleRequest struct {
	Enabled bool `json:"enabled"`
}

var knownToggles = map[string]bool{
	ports.ToggleCrossProgramSharing: true,
	ports.ToggleDVWorkflow:          true,
}

// Get handles GET /v1/config/toggles/:name.
func (h *ToggleHandler) Get(c echo.Context) error {
	if _, err := ctxPrincipal(c); err != nil {
		return err
	}

	name := c.Param("name")
	if !knownToggles[name] {
		return echo.NewHTTPError(http.StatusNotFound, "unknown toggle")
	}

	enabled, err := h.toggles.Enabled(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"name": name, "enabled": enabled})
}

// Set handles PUT /v1/config/toggles/:name.
func (h *ToggleHandler) Set(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	name := c.Param("name")
	if !knownToggles[name] {
		return echo.NewHTTPError(http.StatusNotFound, "unknown toggle")
	}

	var req setToggleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.toggles.Set(c.Request().Context(), p, name, req.Enabled); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
