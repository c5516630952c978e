package domain

import "time"

// AccessBlock is a negative-access entry: while active it makes the client
// invisible to the named principal regardless of any role grant. Blocks are
// deactivated, never deleted, so the history of who was shielded from whom
// survives for review.
type AccessBlock struct {
	ID            string     `json:"id"`
	PrincipalID   string     `json:"principal_id"`
	ClientID      string     `json:"client_id"`
	Reason        string     `json:"reason"`
	IsActive      bool       `json:"is_active"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedBy *string    `json:"deactivated_by,omitempty"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

// DvRemovalRequest is a request to lift a client's DV-safe flag. Setting the
// flag needs no approval; lifting it is a two-person workflow. Approved is
// nil while the request is pending; terminal states are approved and
// rejected. The reviewer must be a different principal than the requester
// and must hold a strictly higher role rank.
type DvRemovalRequest struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	RequestedBy string     `json:"requested_by"`
	Reason      string     `json:"reason"`
	Approved    *bool      `json:"approved,omitempty"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Pending reports whether the request still awaits review.
func (r DvRemovalRequest) Pending() bool {
	return r.Approved == nil
}
