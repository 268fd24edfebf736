package domain

// Role is the closed set of user roles. The numeric values are stored in the
// database and embedded in identity tokens, so they must stay stable.
type Role int

const (
	RoleAdmin       Role = 1
	RoleRegularUser Role = 2
	RoleMaintenance Role = 3
)

// RoleFromValue maps a stored or wire value to a Role. Unrecognized values
// degrade to the least-privileged role, never to a higher one.
func RoleFromValue(v int) Role {
	switch Role(v) {
	case RoleAdmin, RoleRegularUser, RoleMaintenance:
		return Role(v)
	default:
		return RoleRegularUser
	}
}

// IsValid reports whether r is a declared role value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleRegularUser, RoleMaintenance:
		return true
	}
	return false
}

// CanAddUsers reports whether the role may create users.
func (r Role) CanAddUsers() bool {
	return r == RoleAdmin
}

// CanAddSongs reports whether the role may create or remove songs.
func (r Role) CanAddSongs() bool {
	return r == RoleAdmin || r == RoleMaintenance
}

// CanLikeSongs reports whether the role may like or play songs. Every
// authenticated role can.
func (r Role) CanLikeSongs() bool {
	return r.IsValid()
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleRegularUser:
		return "regular_user"
	case RoleMaintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}
