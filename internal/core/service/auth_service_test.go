package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

const testJWTSecret = "test-secret"

func newAuthFixture() (*AuthService, *stubUserRepo, *stubAuditRepo) {
	users := newStubUserRepo()
	auditRepo := &stubAuditRepo{}
	s := NewAuthService(users, NewAuditService(auditRepo, discardLogger), testJWTSecret, 0)
	return s, users, auditRepo
}

func TestAuthRegister_HashesPassword(t *testing.T) {
	s, _, _ := newAuthFixture()

	user, err := s.Register(context.Background(), ports.RegisterInput{
		Username:     "worker1",
		Password:     "s3cret-pass",
		DisplayLabel: "Worker One",
		Grants:       []domain.RoleGrant{grant("housing", domain.RoleCaseWorker)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret-pass" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestAuthRegister_DuplicateUsername(t *testing.T) {
	s, _, _ := newAuthFixture()
	ctx := context.Background()

	input := ports.RegisterInput{Username: "worker1", Password: "s3cret-pass"}
	if _, err := s.Register(ctx, input); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := s.Register(ctx, input); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthRegister_UnknownRoleRejected(t *testing.T) {
	s, _, _ := newAuthFixture()

	_, err := s.Register(context.Background(), ports.RegisterInput{
		Username: "worker1",
		Password: "s3cret-pass",
		Grants:   []domain.RoleGrant{{ProgramID: "housing", Role: "archdruid", Status: domain.GrantActive}},
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown roles must be rejected at registration, got %v", err)
	}
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	s, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := s.Register(ctx, ports.RegisterInput{Username: "worker1", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if _, _, err := s.Login(ctx, "worker1", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthLogin_UnknownUser(t *testing.T) {
	s, _, _ := newAuthFixture()

	if _, _, err := s.Login(context.Background(), "nobody", "whatever"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthLogin_TokenCarriesActiveGrantsOnly(t *testing.T) {
	s, users, auditRepo := newAuthFixture()
	ctx := context.Background()

	user, err := s.Register(ctx, ports.RegisterInput{
		Username:     "worker1",
		Password:     "s3cret-pass",
		DisplayLabel: "Worker One",
		Grants: []domain.RoleGrant{
			grant("housing", domain.RoleCaseWorker),
			{ProgramID: "employment", Role: domain.RoleSupervisor, Status: domain.GrantRevoked},
		},
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if _, err := users.FindByID(ctx, user.ID); err != nil {
		t.Fatalf("user not persisted: %v", err)
	}

	token, _, err := s.Login(ctx, "worker1", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token must verify against the signing secret: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID {
		t.Fatalf("wrong subject: %v", claims["sub"])
	}
	grants, ok := claims["grants"].([]interface{})
	if !ok || len(grants) != 1 {
		t.Fatalf("revoked grants must be absent from the token: %v", claims["grants"])
	}

	if auditRepo.lastAction() != domain.AuditActionLogin {
		t.Fatalf("login must leave a trail entry")
	}
}
