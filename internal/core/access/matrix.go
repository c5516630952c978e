// Package access holds the static role × capability permission matrix and
// the per-field rules it delegates to. The matrix is a fixed table over
// closed role and capability types, checked for exhaustiveness at startup;
// there is no runtime registration and no policy language.
package access

import (
	"fmt"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// Level is the verdict the matrix returns for a (role, capability) pair.
type Level string

const (
	// Deny and Allow are role-global.
	Deny  Level = "deny"
	Allow Level = "allow"
	// Program allows the action only within a program shared by the
	// principal and the target client, resolved by the resolver service.
	Program Level = "program"
	// Gated allows the action within a shared program subject to a further
	// runtime safeguard, e.g. the consent filter for clinical notes.
	Gated Level = "gated"
	// PerField defers to the attribute-level rules in this package.
	PerField Level = "per_field"
)

// Capability is the closed, versioned vocabulary of gated actions. Adding a
// capability here without a value in every role's row fails Validate.
type Capability string

const (
	CapClientView           Capability = "client.view"
	CapClientEdit           Capability = "client.edit"
	CapClientViewClinical   Capability = "client.view_clinical"
	CapAttributeView        Capability = "attribute.view"
	CapAttributeEdit        Capability = "attribute.edit"
	CapNoteView             Capability = "note.view"
	CapNoteCreate           Capability = "note.create"
	CapNoteSearch           Capability = "note.search"
	CapGroupView            Capability = "group.view"
	CapAlertView            Capability = "alert.view"
	CapAlertCreate          Capability = "alert.create"
	CapAlertRecommendCancel Capability = "alert.recommend_cancel"
	CapAlertCancel          Capability = "alert.cancel"
	CapAuditView            Capability = "audit.view"
	CapReportAggregate      Capability = "report.aggregate"
)

// Capabilities lists every defined capability key.
var Capabilities = []Capability{
	CapClientView, CapClientEdit, CapClientViewClinical,
	CapAttributeView, CapAttributeEdit,
	CapNoteView, CapNoteCreate, CapNoteSearch,
	CapGroupView,
	CapAlertView, CapAlertCreate, CapAlertRecommendCancel, CapAlertCancel,
	CapAuditView, CapReportAggregate,
}

// Valid reports whether c is a defined capability key.
func (c Capability) Valid() bool {
	for _, known := range Capabilities {
		if c == known {
			return true
		}
	}
	return false
}

// matrix is the full table. Front desk sees identity, contact and safety
// fields and nothing clinical; the executive role sees aggregate reporting
// only. Recommending and executing a safety-alert cancellation are separate
// capabilities held by disjoint roles, so the two-person rule is a property
// of this table rather than of calling code.
var matrix = map[domain.Role]map[Capability]Level{
	domain.RoleFrontDesk: {
		CapClientView:           Program,
		CapClientEdit:           Deny,
		CapClientViewClinical:   Deny,
		CapAttributeView:        PerField,
		CapAttributeEdit:        PerField,
		CapNoteView:             Deny,
		CapNoteCreate:           Deny,
		CapNoteSearch:           Deny,
		CapGroupView:            Program,
		CapAlertView:            Deny,
		CapAlertCreate:          Deny,
		CapAlertRecommendCancel: Deny,
		CapAlertCancel:          Deny,
		CapAuditView:            Deny,
		CapReportAggregate:      Deny,
	},
	domain.RoleCaseWorker: {
		CapClientView:           Program,
		CapClientEdit:           Program,
		CapClientViewClinical:   Gated,
		CapAttributeView:        PerField,
		CapAttributeEdit:        PerField,
		CapNoteView:             Gated,
		CapNoteCreate:           Program,
		CapNoteSearch:           Gated,
		CapGroupView:            Program,
		CapAlertView:            Program,
		CapAlertCreate:          Program,
		CapAlertRecommendCancel: Program,
		CapAlertCancel:          Deny,
		CapAuditView:            Deny,
		CapReportAggregate:      Deny,
	},
	domain.RoleClinician: {
		CapClientView:           Program,
		CapClientEdit:           Program,
		CapClientViewClinical:   Gated,
		CapAttributeView:        PerField,
		CapAttributeEdit:        PerField,
		CapNoteView:             Gated,
		CapNoteCreate:           Program,
		CapNoteSearch:           Gated,
		CapGroupView:            Program,
		CapAlertView:            Program,
		CapAlertCreate:          Program,
		CapAlertRecommendCancel: Program,
		CapAlertCancel:          Deny,
		CapAuditView:            Deny,
		CapReportAggregate:      Deny,
	},
	domain.RoleSupervisor: {
		CapClientView:           Program,
		CapClientEdit:           Program,
		CapClientViewClinical:   Gated,
		CapAttributeView:        PerField,
		CapAttributeEdit:        PerField,
		CapNoteView:             Gated,
		CapNoteCreate:           Program,
		CapNoteSearch:           Gated,
		CapGroupView:            Program,
		CapAlertView:            Program,
		CapAlertCreate:          Program,
		CapAlertRecommendCancel: Deny,
		CapAlertCancel:          Program,
		CapAuditView:            Allow,
		CapReportAggregate:      Allow,
	},
	domain.RoleExecutive: {
		CapClientView:           Deny,
		CapClientEdit:           Deny,
		CapClientViewClinical:   Deny,
		CapAttributeView:        Deny,
		CapAttributeEdit:        Deny,
		CapNoteView:             Deny,
		CapNoteCreate:           Deny,
		CapNoteSearch:           Deny,
		CapGroupView:            Deny,
		CapAlertView:            Deny,
		CapAlertCreate:          Deny,
		CapAlertRecommendCancel: Deny,
		CapAlertCancel:          Deny,
		CapAuditView:            Deny,
		CapReportAggregate:      Allow,
	},
}

// CanAccess returns the matrix verdict for one role and capability. Unknown
// roles and unknown capabilities deny.
func CanAccess(role domain.Role, cap Capability) Level {
	row, ok := matrix[role]
	if !ok {
		return Deny
	}
	level, ok := row[cap]
	if !ok {
		return Deny
	}
	return level
}

// validLevels is the closed verdict set Validate checks against.
var validLevels = map[Level]struct{}{
	Deny: {}, Allow: {}, Program: {}, Gated: {}, PerField: {},
}

// Validate checks the internal consistency of the matrix: every defined role
// has a row, every row exposes exactly the defined capability set, every
// value is a known level, and no single role holds both halves of the
// alert-cancellation two-person pair. A failure here is a deployment
// blocker, not a log line.
func Validate() error {
	for _, role := range domain.Roles {
		row, ok := matrix[role]
		if !ok {
			return fmt.Errorf("permission matrix: role %q has no row", role)
		}
		if len(row) != len(Capabilities) {
			return fmt.Errorf("permission matrix: role %q exposes %d capabilities, want %d", role, len(row), len(Capabilities))
		}
		for _, cap := range Capabilities {
			level, ok := row[cap]
			if !ok {
				return fmt.Errorf("permission matrix: role %q missing capability %q", role, cap)
			}
			if _, ok := validLevels[level]; !ok {
				return fmt.Errorf("permission matrix: role %q capability %q has unknown level %q", role, cap, level)
			}
		}
		if row[CapAlertRecommendCancel] != Deny && row[CapAlertCancel] != Deny {
			return fmt.Errorf("permission matrix: role %q may both recommend and execute alert cancellation", role)
		}
	}
	if len(matrix) != len(domain.Roles) {
		return fmt.Errorf("permission matrix: %d rows for %d defined roles", len(matrix), len(domain.Roles))
	}
	return nil
}
