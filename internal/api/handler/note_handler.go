package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

type NoteHandler struct {
	notes ports.NoteService
}

func NewNoteHandler(notes ports.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	ProgramID *string   `json:"program_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type listNotesResponse struct {
	Data           []noteResponse `json:"data"`
	ViewingProgram string         `json:"viewing_program,omitempty"`
}

type createNoteRequest struct {
	Body           string `json:"body" validate:"required"`
	ViewingProgram string `json:"viewing_program,omitempty"`
}

type noteSearchRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	Term     string `json:"term"      validate:"required,min=2"`
}

type noteSearchMatchResponse struct {
	Note     noteResponse `json:"note"`
	Fragment string       `json:"fragment"`
}

func toNoteResponse(n *domain.CaseNote) noteResponse {
	return noteResponse{
		ID:        n.ID,
		ClientID:  n.ClientID,
		ProgramID: n.ProgramID,
		AuthorID:  n.AuthorID,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	}
}

// List handles GET /v1/clients/:id/notes.
func (h *NoteHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	filtered, err := h.notes.List(c.Request().Context(), p, c.Param("id"), c.QueryParam("viewing_program"))
	if err != nil {
		return err
	}

	data := make([]noteResponse, 0, len(filtered.Notes))
	for _, note := range filtered.Notes {
		data = append(data, toNoteResponse(note))
	}
	return c.JSON(http.StatusOK, listNotesResponse{Data: data, ViewingProgram: filtered.ViewingProgram})
}

// Get handles GET /v1/notes/:id.
func (h *NoteHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	note, err := h.notes.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toNoteResponse(note))
}

// Create handles POST /v1/clients/:id/notes.
func (h *NoteHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.notes.Create(c.Request().Context(), ports.CreateNoteInput{
		Principal:      p,
		ClientID:       c.Param("id"),
		Body:           req.Body,
		ViewingProgram: req.ViewingProgram,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toNoteResponse(note))
}

// Search handles POST /v1/notes/search.
func (h *NoteHandler) Search(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req noteSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	matches, err := h.notes.Search(c.Request().Context(), p, req.ClientID, req.Term)
	if err != nil {
		return err
	}

	data := make([]noteSearchMatchResponse, 0, len(matches))
	for _, m := range matches {
		data = append(data, noteSearchMatchResponse{Note: toNoteResponse(m.Note), Fragment: m.Fragment})
	}
	return c.JSON(http.StatusOK, map[string]any{"data": data})
}
