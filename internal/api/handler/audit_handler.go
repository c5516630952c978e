package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/ports"
)

type AuditHandler struct {
	audit ports.AuditService
}

func NewAuditHandler(audit ports.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Query handles GET /v1/audit. The demo-universe scope comes from the
// caller's principal; it is not a query parameter.
func (h *AuditHandler) Query(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	filter := ports.AuditQueryFilter{
		PrincipalID:  c.QueryParam("principal_id"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Action:       c.QueryParam("action"),
		Limit:        limit,
		Offset:       offset,
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339")
		}
		filter.From = from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339")
		}
		filter.To = to
	}

	records, total, err := h.audit.Query(c.Request().Context(), p, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":  records,
		"total": total,
	})
}
