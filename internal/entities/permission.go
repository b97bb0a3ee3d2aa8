package entities

import "fmt"

// Permission is a named grant from the platform's fixed permission set.
// Permissions are granted to staff accounts and app credentials; customers
// never hold permissions.
type Permission string

const (
	PermissionManageUsers     Permission = "manage_users"
	PermissionManageStaff     Permission = "manage_staff"
	PermissionManageOrders    Permission = "manage_orders"
	PermissionManageCheckouts Permission = "manage_checkouts"
	PermissionManageRooms     Permission = "manage_rooms"
	PermissionManageApps      Permission = "manage_apps"
	PermissionManagePages     Permission = "manage_pages"
	PermissionManageHotels    Permission = "manage_hotels"
)

// AllPermissions lists every permission the platform defines.
var AllPermissions = []Permission{
	PermissionManageUsers,
	PermissionManageStaff,
	PermissionManageOrders,
	PermissionManageCheckouts,
	PermissionManageRooms,
	PermissionManageApps,
	PermissionManagePages,
	PermissionManageHotels,
}

// ParsePermission converts a string to a Permission
func ParsePermission(s string) (Permission, error) {
	for _, p := range AllPermissions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown permission: %s", s)
}

// String returns the permission name
func (p Permission) String() string {
	return string(p)
}
