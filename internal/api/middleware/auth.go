package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// PrincipalKey is the echo context key under which the authenticated
// Principal is stored.
const PrincipalKey = "principal"

// Auth validates the JWT and reconstructs the Principal from its claims. The
// token is the only source of identity: handlers never look a user up again.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			p, ok := principalFromClaims(claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing identity claims")
			}

			c.Set(PrincipalKey, p)
			return next(c)
		}
	}
}

// principalFromClaims rebuilds the Principal the token was issued for. Grants
// with an unknown role are dropped rather than granted: an old token minted
// before a role was retired must not keep conferring it.
func principalFromClaims(claims jwt.MapClaims) (domain.Principal, bool) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Principal{}, false
	}

	p := domain.Principal{ID: sub}
	p.DisplayLabel, _ = claims["display_label"].(string)
	p.IsAdmin, _ = claims["is_admin"].(bool)
	p.IsDemo, _ = claims["is_demo"].(bool)

	rawGrants, _ := claims["grants"].([]interface{})
	for _, raw := range rawGrants {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		programID, _ := entry["program_id"].(string)
		roleName, _ := entry["role"].(string)
		role := domain.Role(roleName)
		if programID == "" || !role.Valid() {
			continue
		}
		p.Grants = append(p.Grants, domain.RoleGrant{
			ProgramID: programID,
			Role:      role,
			Status:    domain.GrantActive,
		})
	}
	return p, true
}
