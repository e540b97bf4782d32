package authz

// Permissions returns the permission set of a role as a lookup map.
func Permissions(role string) map[string]bool {
	perms := make(map[string]bool)
	if role == "" {
		return perms
	}
	for _, p := range basePermissions {
		perms[p] = true
	}
	for _, p := range rolePermissions[role] {
		perms[p] = true
	}
	return perms
}

// Can is the capability check run before every order operation. It is a pure
// function of the role and the requested permission.
func Can(role, permission string) bool {
	return Permissions(role)[permission]
}
