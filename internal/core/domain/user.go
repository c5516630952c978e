package domain

import "time"

// User models a staff account in the authentication layer. The engine itself
// only ever sees the Principal reconstructed from the user's token claims.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email,omitempty"`
	PasswordHash string      `json:"-"`
	DisplayLabel string      `json:"display_label"`
	IsAdmin      bool        `json:"is_admin"`
	IsDemo       bool        `json:"is_demo"`
	Grants       []RoleGrant `json:"grants"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Principal converts the stored user into the request-scoped actor identity.
func (u *User) Principal() Principal {
	return Principal{
		ID:           u.ID,
		DisplayLabel: u.DisplayLabel,
		IsAdmin:      u.IsAdmin,
		IsDemo:       u.IsDemo,
		Grants:       u.Grants,
	}
}
