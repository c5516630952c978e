package access

import "github.com/casefile-io/access-engine/internal/core/domain"

// lowestRank identifies the lowest-privilege role, the only one the DV-safe
// flag restricts.
func lowestRank() int {
	lowest := domain.Roles[0].Rank()
	for _, r := range domain.Roles[1:] {
		if r.Rank() < lowest {
			lowest = r.Rank()
		}
	}
	return lowest
}

// dvRestricted reports whether the DV-safe flag applies to this role for
// this definition. Higher roles are unaffected by the flag.
func dvRestricted(role domain.Role, def domain.AttributeDefinition, dvSafe bool) bool {
	return dvSafe && def.DVSensitive && role.Rank() == lowestRank()
}

// FieldVisible resolves a PER_FIELD read for one attribute definition.
func FieldVisible(role domain.Role, def domain.AttributeDefinition, dvSafe bool) bool {
	switch CanAccess(role, CapAttributeView) {
	case PerField, Allow:
	default:
		return false
	}
	if def.Group == domain.GroupClinical && CanAccess(role, CapClientViewClinical) == Deny {
		return false
	}
	return !dvRestricted(role, def, dvSafe)
}

// FieldWritable resolves a PER_FIELD write for one attribute definition.
// A field that is not visible is never writable.
func FieldWritable(role domain.Role, def domain.AttributeDefinition, dvSafe bool) bool {
	if !FieldVisible(role, def, dvSafe) {
		return false
	}
	switch CanAccess(role, CapAttributeEdit) {
	case PerField, Allow:
	default:
		return false
	}
	// Front desk records identity, contact and safety details at intake but
	// never writes clinical data.
	if def.Group == domain.GroupClinical && CanAccess(role, CapClientEdit) == Deny {
		return false
	}
	return true
}
