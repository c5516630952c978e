package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// AuthService implements staff registration and login. The tokens it issues
// carry everything the middleware needs to rebuild a Principal without a
// database round trip: id, display label, admin and demo flags, and the
// active role grants.
type AuthService struct {
	repo      ports.UserRepository
	audit     ports.AuditService
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.UserRepository, audit ports.AuditService, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, audit: audit, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	for _, g := range input.Grants {
		if !g.Role.Valid() {
			return nil, domain.ErrInvalidCredentials
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		DisplayLabel: input.DisplayLabel,
		IsAdmin:      input.IsAdmin,
		IsDemo:       input.IsDemo,
		Grants:       input.Grants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	// A failed login audit must not block the login itself.
	p := user.Principal()
	s.audit.RecordSideActivity(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionLogin,
		ResourceType: "user",
		ResourceID:   user.ID,
		IsDemo:       user.IsDemo,
	})

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	grants := make([]map[string]string, 0, len(user.Grants))
	for _, g := range user.Grants {
		if !g.Active() {
			continue
		}
		grants = append(grants, map[string]string{
			"program_id": g.ProgramID,
			"role":       string(g.Role),
		})
	}

	claims := jwt.MapClaims{
		"sub":           user.ID,
		"username":      user.Username,
		"display_label": user.DisplayLabel,
		"is_admin":      user.IsAdmin,
		"is_demo":       user.IsDemo,
		"grants":        grants,
		"exp":           time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
