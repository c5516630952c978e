package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/api/middleware"
	"github.com/casefile-io/access-engine/internal/core/domain"
)

// ctxPrincipal extracts the Principal injected by the Auth middleware.
// Presence proves the middleware ran; its absence on a protected route is a
// wiring bug surfaced as a 401, never a silent anonymous principal.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(middleware.PrincipalKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}
