package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type grantRequest struct {
	ProgramID string `json:"program_id" validate:"required"`
	Role      string `json:"role"       validate:"required"`
}

type registerRequest struct {
	Username     string         `json:"username"      validate:"required,min=3"`
	Password     string         `json:"password"      validate:"required,min=8"`
	Email        string         `json:"email,omitempty" validate:"omitempty,email"`
	DisplayLabel string         `json:"display_label" validate:"required"`
	IsAdmin      bool           `json:"is_admin"`
	IsDemo       bool           `json:"is_demo"`
	Grants       []grantRequest `json:"grants" validate:"dive"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// Register creates a new staff account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	grants := make([]domain.RoleGrant, 0, len(req.Grants))
	for _, g := range req.Grants {
		grants = append(grants, domain.RoleGrant{
			ProgramID: g.ProgramID,
			Role:      domain.Role(g.Role),
			Status:    domain.GrantActive,
		})
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		DisplayLabel: req.DisplayLabel,
		IsAdmin:      req.IsAdmin,
		IsDemo:       req.IsDemo,
		Grants:       grants,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a staff account and returns a JWT token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}
