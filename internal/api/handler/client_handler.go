package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

type ClientHandler struct {
	clients ports.ClientService
}

func NewClientHandler(clients ports.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// clientResponse renders one client. DVSafe is a pointer so roles that must
// not observe the flag get the field omitted entirely, not a default false.
type clientResponse struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	DVSafe   *bool    `json:"dv_safe,omitempty"`
	Sharing  string   `json:"cross_program_sharing"`
	Programs []string `json:"programs"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listClientsResponse struct {
	Data       []clientResponse   `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type setSharingRequest struct {
	Old string `json:"old" validate:"required,oneof=consent restrict default"`
	New string `json:"new" validate:"required,oneof=consent restrict default"`
}

type setStatusRequest struct {
	Old string `json:"old" validate:"required,oneof=active inactive exited"`
	New string `json:"new" validate:"required,oneof=active inactive exited"`
}

func toClientResponse(s ports.ClientSummary) clientResponse {
	resp := clientResponse{
		ID:       s.ID,
		Status:   string(s.Status),
		Sharing:  string(s.Sharing),
		Programs: s.Programs,
	}
	if s.ShowDVSafe {
		v := s.DVSafe
		resp.DVSafe = &v
	}
	return resp
}

// List handles GET /v1/clients.
func (h *ClientHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.clients.List(c.Request().Context(), ports.ListClientsInput{
		Principal: p,
		Status:    domain.ClientStatus(c.QueryParam("status")),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	data := make([]clientResponse, 0, len(result.Items))
	for _, item := range result.Items {
		data = append(data, toClientResponse(item))
	}

	return c.JSON(http.StatusOK, listClientsResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Get handles GET /v1/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	summary, err := h.clients.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toClientResponse(*summary))
}

// SetSharing handles PUT /v1/clients/:id/sharing.
func (h *ClientHandler) SetSharing(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req setSharingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.clients.SetSharing(c.Request().Context(), p, c.Param("id"),
		domain.SharingPreference(req.Old), domain.SharingPreference(req.New))
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// SetStatus handles PUT /v1/clients/:id/status.
func (h *ClientHandler) SetStatus(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.clients.SetStatus(c.Request().Context(), p, c.Param("id"),
		domain.ClientStatus(req.Old), domain.ClientStatus(req.New))
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
