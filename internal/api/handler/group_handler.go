package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/ports"
)

type GroupHandler struct {
	groups ports.GroupService
}

func NewGroupHandler(groups ports.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// ListForClient handles GET /v1/clients/:id/groups.
func (h *GroupHandler) ListForClient(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	views, err := h.groups.ListForClient(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}

	groups := make([]any, 0, len(views))
	for _, v := range views {
		groups = append(groups, v.Group)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": groups})
}
