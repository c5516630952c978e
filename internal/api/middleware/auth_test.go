package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, authHeader string) (domain.Principal, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.Principal
	handler := Auth(testSecret)(func(c echo.Context) error {
		got = c.Get(PrincipalKey).(domain.Principal)
		return c.NoContent(http.StatusOK)
	})
	return got, handler(c)
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":           "u1",
		"display_label": "Worker One",
		"is_admin":      false,
		"is_demo":       true,
		"grants": []map[string]string{
			{"program_id": "housing", "role": "case_worker"},
		},
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

func wantUnauthorized(t *testing.T, err error) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_RebuildsPrincipalFromClaims(t *testing.T) {
	token := signToken(t, testSecret, jwt.SigningMethodHS256, validClaims())

	p, err := runAuth(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "u1" || p.DisplayLabel != "Worker One" || !p.IsDemo || p.IsAdmin {
		t.Fatalf("wrong principal: %+v", p)
	}
	if len(p.Grants) != 1 || p.Grants[0].ProgramID != "housing" || p.Grants[0].Role != domain.RoleCaseWorker {
		t.Fatalf("wrong grants: %+v", p.Grants)
	}
	if p.Grants[0].Status != domain.GrantActive {
		t.Fatalf("token grants are active by construction: %+v", p.Grants[0])
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	_, err := runAuth(t, "")
	wantUnauthorized(t, err)
}

func TestAuth_WrongScheme(t *testing.T) {
	token := signToken(t, testSecret, jwt.SigningMethodHS256, validClaims())
	_, err := runAuth(t, "Basic "+token)
	wantUnauthorized(t, err)
}

func TestAuth_WrongSecret(t *testing.T) {
	token := signToken(t, "some-other-secret", jwt.SigningMethodHS256, validClaims())
	_, err := runAuth(t, "Bearer "+token)
	wantUnauthorized(t, err)
}

func TestAuth_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)
	_, err := runAuth(t, "Bearer "+token)
	wantUnauthorized(t, err)
}

func TestAuth_MissingSubject(t *testing.T) {
	claims := validClaims()
	delete(claims, "sub")
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)
	_, err := runAuth(t, "Bearer "+token)
	wantUnauthorized(t, err)
}

func TestAuth_UnknownRoleGrantDropped(t *testing.T) {
	claims := validClaims()
	claims["grants"] = []map[string]string{
		{"program_id": "housing", "role": "case_worker"},
		{"program_id": "housing", "role": "retired_role"},
		{"program_id": "", "role": "supervisor"},
	}
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claims)

	p, err := runAuth(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Grants) != 1 {
		t.Fatalf("malformed grants must be dropped, not granted: %+v", p.Grants)
	}
}

func TestAuth_RejectsForeignSigningMethod(t *testing.T) {
	// alg=none style downgrades must not pass the HS256 pin.
	token := signToken(t, testSecret, jwt.SigningMethodHS512, validClaims())
	_, err := runAuth(t, "Bearer "+token)
	wantUnauthorized(t, err)
}
