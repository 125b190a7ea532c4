package domain

// Elevated role sets used by the workflows. Status transitions accept any
// elevated role; deletion and regeneration are restricted to admin and hr.
var (
	ElevatedRoles = []Role{RoleAdmin, RoleHR, RoleManager}
	StrictRoles   = []Role{RoleAdmin, RoleHR}
)

// IsElevated reports whether the role belongs to the allowed elevated set.
func IsElevated(role Role, allowed ...Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// IsOwner reports whether the actor is the designated owner of an entity.
// Empty owner ids never match.
func IsOwner(ownerID string, actor Actor) bool {
	return ownerID != "" && ownerID == actor.EmployeeID
}

// Allowed is the owner-or-elevated check every mutating workflow operation
// runs before acting. The actor passes when it owns the entity through any of
// the given owner fields, or holds one of the allowed elevated roles.
func Allowed(actor Actor, ownerIDs []string, elevated ...Role) bool {
	for _, owner := range ownerIDs {
		if IsOwner(owner, actor) {
			return true
		}
	}
	return IsElevated(actor.Role, elevated...)
}
