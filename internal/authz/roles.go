package authz

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

func IsAdmin(role string) bool {
	return role == RoleAdmin
}

func IsKnown(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
