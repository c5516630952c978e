package domain

import "time"

// SharingPreference is the per-client cross-program sharing tri-state. It
// overrides the agency-wide toggle in both directions; SharingDefault defers
// to the toggle.
type SharingPreference string

const (
	SharingConsent  SharingPreference = "consent"
	SharingRestrict SharingPreference = "restrict"
	SharingDefault  SharingPreference = "default"
)

// ClientStatus is the lifecycle state of a client record.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientExited   ClientStatus = "exited"
)

// EnrolmentStatus is the lifecycle state of a program enrolment.
type EnrolmentStatus string

const (
	EnrolmentActive EnrolmentStatus = "active"
	EnrolmentClosed EnrolmentStatus = "closed"
)

// Enrolment links a client to a program.
type Enrolment struct {
	ProgramID  string          `json:"program_id"`
	Status     EnrolmentStatus `json:"status"`
	EnrolledAt time.Time       `json:"enrolled_at"`
	ClosedAt   *time.Time      `json:"closed_at,omitempty"`
}

// Active reports whether the enrolment currently counts for access checks.
func (e Enrolment) Active() bool {
	return e.Status == EnrolmentActive
}

// Client is the protected resource at the centre of every access decision.
// Identifying details live in the attribute layer and are encrypted at rest;
// the record itself carries only access-relevant state.
type Client struct {
	ID     string       `json:"id"`
	IsDemo bool         `json:"is_demo"`
	Status ClientStatus `json:"status"`
	// DVSafe restricts DV-sensitive attributes from the lowest-privilege
	// role. Set unilaterally; removal requires a reviewed DvRemovalRequest.
	DVSafe     bool              `json:"dv_safe"`
	Sharing    SharingPreference `json:"cross_program_sharing"`
	Enrolments []Enrolment       `json:"enrolments"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Programs returns the ids of every program the client is actively enrolled in.
func (c Client) Programs() []string {
	var out []string
	for _, e := range c.Enrolments {
		if e.Active() {
			out = append(out, e.ProgramID)
		}
	}
	return out
}

// EnrolledIn reports whether the client has an active enrolment in programID.
func (c Client) EnrolledIn(programID string) bool {
	for _, e := range c.Enrolments {
		if e.Active() && e.ProgramID == programID {
			return true
		}
	}
	return false
}

// SharedPrograms returns the programs where the principal holds an active
// grant and the client an active enrolment, in no particular order.
func (c Client) SharedPrograms(p Principal) []string {
	var shared []string
	for _, programID := range p.Programs() {
		if c.EnrolledIn(programID) {
			shared = append(shared, programID)
		}
	}
	return shared
}
