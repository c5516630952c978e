package domain

import "time"

// CaseNote is a clinical note attached to a client. ProgramID records the
// program the note was authored under; nil marks legacy notes imported before
// program attribution existed, which are visible under any viewing program.
// Body is plaintext in memory and ciphertext at rest.
type CaseNote struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	ProgramID *string   `json:"program_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	IsDemo    bool      `json:"is_demo"`
	CreatedAt time.Time `json:"created_at"`
}
