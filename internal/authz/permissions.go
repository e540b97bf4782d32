// internal/authz/permissions.go
package authz

// --- Пермишены заказов ---

const (
	OrdersCreate = "orders:create"
	OrdersView   = "orders:view"
	OrdersUpdate = "orders:update"
	OrdersDelete = "orders:delete"
	OrdersExport = "orders:export"
)

// --- Роли ---

const (
	RoleWaiter   = "waiter"
	RoleChef     = "chef"
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// rolePermissions lists the permissions granted beyond the ones every
// authenticated actor has.
var rolePermissions = map[string][]string{
	RoleWaiter: {OrdersCreate},
}

// basePermissions are held by any actor with a non-empty role.
var basePermissions = []string{
	OrdersView,
	OrdersUpdate,
	OrdersDelete,
	OrdersExport,
}
