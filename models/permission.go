package models

// ShopRole is the role a user holds on a specific mechanic shop. It is
// distinct from the platform-wide UserType.
type ShopRole string

const (
	RoleOwner   ShopRole = "owner"
	RoleManager ShopRole = "manager"
	RoleStaff   ShopRole = "staff"
)

// ShopPermission gates shop-level operations.
type ShopPermission string

const (
	PermManageAdmins       ShopPermission = "manageAdmins"
	PermManageServices     ShopPermission = "manageServices"
	PermManageSchedule     ShopPermission = "manageSchedule"
	PermManageAppointments ShopPermission = "manageAppointments"
	PermViewFinances       ShopPermission = "viewFinances"
	PermViewAnalytics      ShopPermission = "viewAnalytics"
)

// RolePermissions is the total mapping from shop role to granted
// permissions. Every ShopRole constant has an entry.
var RolePermissions = map[ShopRole][]ShopPermission{
	RoleOwner: {
		PermManageAdmins,
		PermManageServices,
		PermManageSchedule,
		PermManageAppointments,
		PermViewFinances,
		PermViewAnalytics,
	},
	RoleManager: {
		PermManageServices,
		PermManageSchedule,
		PermManageAppointments,
		PermViewFinances,
		PermViewAnalytics,
	},
	RoleStaff: {
		PermManageSchedule,
		PermManageAppointments,
	},
}

// Valid reports whether r is a recognized shop role.
func (r ShopRole) Valid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// HasPermission reports whether the role grants the given permission.
func (r ShopRole) HasPermission(p ShopPermission) bool {
	for _, granted := range RolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}
