package domain

// Role is the closed set of staff roles. Roles are ranked; rank is used to
// break ties when resolving an authoring program and to enforce that a DV
// removal reviewer out-ranks the requester. Rank never substitutes for a
// permission: the executive role ranks highest yet is denied every
// individual-record capability.
type Role string

const (
	// RoleFrontDesk is the minimal reception role: identity, contact and
	// safety-relevant fields only, nothing clinical.
	RoleFrontDesk  Role = "front_desk"
	RoleCaseWorker Role = "case_worker"
	RoleClinician  Role = "clinician"
	RoleSupervisor Role = "supervisor"
	// RoleExecutive sees aggregate reporting only.
	RoleExecutive Role = "executive"
)

// Roles lists every defined role. The permission matrix validator checks its
// table against this slice, so adding a role here without a matrix row fails
// startup.
var Roles = []Role{RoleFrontDesk, RoleCaseWorker, RoleClinician, RoleSupervisor, RoleExecutive}

var roleRanks = map[Role]int{
	RoleFrontDesk:  10,
	RoleCaseWorker: 20,
	RoleClinician:  30,
	RoleSupervisor: 40,
	RoleExecutive:  50,
}

// Rank returns the role's ordering value. Unknown roles rank zero, below
// every defined role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}
