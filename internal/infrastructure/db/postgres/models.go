package postgres

import (
	"time"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// Row types are the persistence shape; conversion to and from domain types
// happens at the repository boundary so GORM tags never leak upward.

type userRow struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string
	PasswordHash string `gorm:"not null"`
	DisplayLabel string
	IsAdmin      bool
	IsDemo       bool `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Grants       []roleGrantRow `gorm:"foreignKey:UserID"`
}

func (userRow) TableName() string { return "users" }

type roleGrantRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index;not null"`
	ProgramID string `gorm:"index;not null"`
	Role      string `gorm:"not null"`
	Status    string `gorm:"not null;default:active"`
	GrantedAt time.Time
	RevokedAt *time.Time
}

func (roleGrantRow) TableName() string { return "role_grants" }

type clientRow struct {
	ID         string         `gorm:"primaryKey"`
	IsDemo     bool           `gorm:"index"`
	Status     string         `gorm:"index;not null"`
	DVSafe     bool           `gorm:"column:dv_safe"`
	Sharing    string         `gorm:"column:cross_program_sharing;not null;default:default"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Enrolments []enrolmentRow `gorm:"foreignKey:ClientID"`
}

func (clientRow) TableName() string { return "clients" }

type enrolmentRow struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	ClientID   string `gorm:"index;not null"`
	ProgramID  string `gorm:"index;not null"`
	Status     string `gorm:"not null;default:active"`
	EnrolledAt time.Time
	ClosedAt   *time.Time
}

func (enrolmentRow) TableName() string { return "enrolments" }

type caseNoteRow struct {
	ID       string  `gorm:"primaryKey"`
	ClientID string  `gorm:"index;not null"`
	ProgramID *string `gorm:"index"`
	AuthorID string  `gorm:"not null"`
	// Body is ciphertext; the repository seals and opens it.
	Body      []byte
	IsDemo    bool `gorm:"index"`
	CreatedAt time.Time
}

func (caseNoteRow) TableName() string { return "case_notes" }

type attributeDefinitionRow struct {
	Key         string `gorm:"primaryKey"`
	Label       string `gorm:"not null"`
	Group       string `gorm:"column:attr_group;not null"`
	Encrypted   bool
	DVSensitive bool `gorm:"column:dv_sensitive"`
}

func (attributeDefinitionRow) TableName() string { return "attribute_definitions" }

type attributeValueRow struct {
	ClientID string `gorm:"primaryKey"`
	Key      string `gorm:"primaryKey"`
	// Ciphertext for encrypted definitions, UTF-8 bytes otherwise.
	Value     []byte
	Encrypted bool
	UpdatedBy string
	UpdatedAt time.Time
}

func (attributeValueRow) TableName() string { return "attribute_values" }

type accessBlockRow struct {
	ID            string `gorm:"primaryKey"`
	PrincipalID   string `gorm:"index:idx_blocks_principal_client;not null"`
	ClientID      string `gorm:"index:idx_blocks_principal_client;not null"`
	Reason        string
	IsActive      bool `gorm:"index"`
	CreatedBy     string
	CreatedAt     time.Time
	DeactivatedBy *string
	DeactivatedAt *time.Time
}

func (accessBlockRow) TableName() string { return "access_blocks" }

type dvRemovalRequestRow struct {
	ID          string `gorm:"primaryKey"`
	ClientID    string `gorm:"index;not null"`
	RequestedBy string `gorm:"not null"`
	Reason      string
	Approved    *bool
	ReviewedBy  *string
	ReviewedAt  *time.Time
	CreatedAt   time.Time
}

func (dvRemovalRequestRow) TableName() string { return "dv_removal_requests" }

type careGroupRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	IsDemo    bool `gorm:"index"`
	CreatedAt time.Time
	Members   []groupMemberRow `gorm:"foreignKey:GroupID"`
}

func (careGroupRow) TableName() string { return "care_groups" }

type groupMemberRow struct {
	ID           string  `gorm:"primaryKey"`
	GroupID      string  `gorm:"index;not null"`
	ClientID     *string `gorm:"index"`
	Name         string
	Relationship string
}

func (groupMemberRow) TableName() string { return "group_members" }

type featureToggleRow struct {
	Name    string `gorm:"primaryKey"`
	Enabled bool
	UpdatedAt time.Time
}

func (featureToggleRow) TableName() string { return "feature_toggles" }

type portalAccountRow struct {
	ID        string `gorm:"primaryKey"`
	ClientID  string `gorm:"index;not null"`
	IsActive  bool
	UpdatedAt time.Time
}

func (portalAccountRow) TableName() string { return "portal_accounts" }

// --- converters ---

func (r clientRow) toDomain() *domain.Client {
	client := &domain.Client{
		ID:        r.ID,
		IsDemo:    r.IsDemo,
		Status:    domain.ClientStatus(r.Status),
		DVSafe:    r.DVSafe,
		Sharing:   domain.SharingPreference(r.Sharing),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, e := range r.Enrolments {
		client.Enrolments = append(client.Enrolments, domain.Enrolment{
			ProgramID:  e.ProgramID,
			Status:     domain.EnrolmentStatus(e.Status),
			EnrolledAt: e.EnrolledAt,
			ClosedAt:   e.ClosedAt,
		})
	}
	return client
}

func (r roleGrantRow) toDomain() domain.RoleGrant {
	return domain.RoleGrant{
		ProgramID: r.ProgramID,
		Role:      domain.Role(r.Role),
		Status:    domain.GrantStatus(r.Status),
		GrantedAt: r.GrantedAt,
		RevokedAt: r.RevokedAt,
	}
}

func (r userRow) toDomain() *domain.User {
	user := &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		DisplayLabel: r.DisplayLabel,
		IsAdmin:      r.IsAdmin,
		IsDemo:       r.IsDemo,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	for _, g := range r.Grants {
		user.Grants = append(user.Grants, g.toDomain())
	}
	return user
}

func (r accessBlockRow) toDomain() *domain.AccessBlock {
	return &domain.AccessBlock{
		ID:            r.ID,
		PrincipalID:   r.PrincipalID,
		ClientID:      r.ClientID,
		Reason:        r.Reason,
		IsActive:      r.IsActive,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		DeactivatedBy: r.DeactivatedBy,
		DeactivatedAt: r.DeactivatedAt,
	}
}

func (r dvRemovalRequestRow) toDomain() *domain.DvRemovalRequest {
	return &domain.DvRemovalRequest{
		ID:          r.ID,
		ClientID:    r.ClientID,
		RequestedBy: r.RequestedBy,
		Reason:      r.Reason,
		Approved:    r.Approved,
		ReviewedBy:  r.ReviewedBy,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
	}
}

func (r careGroupRow) toDomain() *domain.CareGroup {
	group := &domain.CareGroup{
		ID:        r.ID,
		Name:      r.Name,
		IsDemo:    r.IsDemo,
		CreatedAt: r.CreatedAt,
	}
	for _, m := range r.Members {
		group.Members = append(group.Members, domain.GroupMember{
			ID:           m.ID,
			ClientID:     m.ClientID,
			Name:         m.Name,
			Relationship: m.Relationship,
		})
	}
	return group
}
