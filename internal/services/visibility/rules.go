package visibility

import (
	"fmt"

	"github.com/nvtienanh/metagate/internal/entities"
)

// OwnershipRule reports whether the requester owns the entity. Classes
// without an ownership concept use nil.
type OwnershipRule func(r *entities.Requester, e *entities.Entity) bool

// ClassPolicy is one row of the policy table: how visibility is decided for
// every entity of a resource class.
type ClassPolicy struct {
	// ManagingPermission grants read access to both partitions and write
	// access to both partitions.
	ManagingPermission entities.Permission

	// Ownership decides self-access. Ownership grants public-partition
	// access only; it never extends to the private partition.
	Ownership OwnershipRule

	// PublicReadable marks catalog classes whose public metadata anyone may
	// read, including anonymous requesters.
	PublicReadable bool

	// CloakExistence hides the entity from requesters with no relationship
	// to it: a denial is reported as not-found rather than forbidden.
	CloakExistence bool
}

// ownedByAccount matches the requester's account ID against the entity owner.
// Anonymous requesters never own account-owned entities.
func ownedByAccount(r *entities.Requester, e *entities.Entity) bool {
	return r.IsAuthenticated() && e.OwnerID != "" && r.ID == e.OwnerID
}

// ownedBySelf matches entities that are the requester's own record.
func ownedBySelf(r *entities.Requester, e *entities.Entity) bool {
	return r.IsAuthenticated() && r.ID == e.ID
}

// ownedByAccountOrToken extends account ownership with the anonymous
// checkout token.
func ownedByAccountOrToken(r *entities.Requester, e *entities.Entity) bool {
	if ownedByAccount(r, e) {
		return true
	}
	return r.SessionToken != "" && e.OwnerToken != "" && r.SessionToken == e.OwnerToken
}

// ownedByApp matches an app credential reading its own record.
func ownedByApp(r *entities.Requester, e *entities.Entity) bool {
	return r.Kind == entities.RequesterApp && r.ID == e.ID
}

// policyTable maps every resource class to its visibility policy. The whole
// platform's metadata access rules live here; resolvers never carry their own
// permission checks.
var policyTable = map[entities.ResourceClass]ClassPolicy{
	entities.ResourceUser: {
		ManagingPermission: entities.PermissionManageUsers,
		Ownership:          ownedBySelf,
		CloakExistence:     true,
	},
	entities.ResourceStaff: {
		ManagingPermission: entities.PermissionManageStaff,
		Ownership:          ownedBySelf,
	},
	entities.ResourceOrder: {
		ManagingPermission: entities.PermissionManageOrders,
		Ownership:          ownedByAccount,
		CloakExistence:     true,
	},
	entities.ResourceFulfillment: {
		ManagingPermission: entities.PermissionManageOrders,
		Ownership:          ownedByAccount,
		CloakExistence:     true,
	},
	entities.ResourceCheckout: {
		ManagingPermission: entities.PermissionManageCheckouts,
		Ownership:          ownedByAccountOrToken,
		CloakExistence:     true,
	},
	entities.ResourceRoom: {
		ManagingPermission: entities.PermissionManageRooms,
		PublicReadable:     true,
	},
	entities.ResourceRoomType: {
		ManagingPermission: entities.PermissionManageRooms,
		PublicReadable:     true,
	},
	entities.ResourceRoomVariant: {
		ManagingPermission: entities.PermissionManageRooms,
		PublicReadable:     true,
	},
	entities.ResourceCategory: {
		ManagingPermission: entities.PermissionManageRooms,
		PublicReadable:     true,
	},
	entities.ResourceCollection: {
		ManagingPermission: entities.PermissionManageRooms,
		PublicReadable:     true,
	},
	entities.ResourceAttribute: {
		ManagingPermission: entities.PermissionManageRooms,
		PublicReadable:     true,
	},
	entities.ResourceDigitalContent: {
		ManagingPermission: entities.PermissionManageRooms,
	},
	entities.ResourcePageType: {
		ManagingPermission: entities.PermissionManagePages,
		PublicReadable:     true,
	},
	entities.ResourceHotel: {
		ManagingPermission: entities.PermissionManageHotels,
		PublicReadable:     true,
	},
	entities.ResourceApp: {
		ManagingPermission: entities.PermissionManageApps,
		Ownership:          ownedByApp,
	},
}

// PolicyFor returns the policy table row for a resource class.
func PolicyFor(class entities.ResourceClass) (ClassPolicy, error) {
	policy, ok := policyTable[class]
	if !ok {
		return ClassPolicy{}, fmt.Errorf("no policy for resource class: %s", class)
	}
	return policy, nil
}
