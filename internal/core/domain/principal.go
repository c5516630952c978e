package domain

import "time"

// GrantStatus is the lifecycle state of a role grant.
type GrantStatus string

const (
	GrantActive  GrantStatus = "active"
	GrantRevoked GrantStatus = "revoked"
)

// RoleGrant is a principal's standing role within a single program.
// A principal's effective role set is the union of its active grants.
type RoleGrant struct {
	ProgramID string      `json:"program_id"`
	Role      Role        `json:"role"`
	Status    GrantStatus `json:"status"`
	GrantedAt time.Time   `json:"granted_at"`
	RevokedAt *time.Time  `json:"revoked_at,omitempty"`
}

// Active reports whether the grant currently confers access.
func (g RoleGrant) Active() bool {
	return g.Status == GrantActive
}

// Principal is an authenticated actor making a request. It is supplied by the
// authentication layer; the engine never looks it up itself.
type Principal struct {
	ID           string `json:"id"`
	DisplayLabel string `json:"display_label"`
	// IsAdmin confers system-configuration rights only. It is never a
	// substitute for a role grant when resolving data access.
	IsAdmin bool `json:"is_admin"`
	// IsDemo places the principal in the demo universe. Demo and real data
	// are disjoint: a demo principal never sees real records and vice versa.
	IsDemo bool        `json:"is_demo"`
	Grants []RoleGrant `json:"grants"`
}

// Programs returns the ids of every program where the principal holds an
// active grant.
func (p Principal) Programs() []string {
	seen := make(map[string]struct{}, len(p.Grants))
	var out []string
	for _, g := range p.Grants {
		if !g.Active() {
			continue
		}
		if _, ok := seen[g.ProgramID]; ok {
			continue
		}
		seen[g.ProgramID] = struct{}{}
		out = append(out, g.ProgramID)
	}
	return out
}

// RolesIn returns the active roles the principal holds in the given program.
func (p Principal) RolesIn(programID string) []Role {
	var roles []Role
	for _, g := range p.Grants {
		if g.Active() && g.ProgramID == programID {
			roles = append(roles, g.Role)
		}
	}
	return roles
}

// HighestRoleIn returns the highest-ranked active role in the given program,
// and false when the principal holds no active grant there.
func (p Principal) HighestRoleIn(programID string) (Role, bool) {
	var best Role
	found := false
	for _, g := range p.Grants {
		if !g.Active() || g.ProgramID != programID {
			continue
		}
		if !found || g.Role.Rank() > best.Rank() {
			best = g.Role
			found = true
		}
	}
	return best, found
}

// HighestRole returns the highest-ranked active role across all programs.
func (p Principal) HighestRole() (Role, bool) {
	var best Role
	found := false
	for _, g := range p.Grants {
		if !g.Active() {
			continue
		}
		if !found || g.Role.Rank() > best.Rank() {
			best = g.Role
			found = true
		}
	}
	return best, found
}
