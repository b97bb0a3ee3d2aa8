package entities

import "fmt"

// ResourceClass identifies the kind of platform resource an entity belongs to.
// Every class maps to a managing permission in the policy table.
type ResourceClass string

const (
	ResourceUser           ResourceClass = "user"
	ResourceStaff          ResourceClass = "staff"
	ResourceOrder          ResourceClass = "order"
	ResourceFulfillment    ResourceClass = "fulfillment"
	ResourceCheckout       ResourceClass = "checkout"
	ResourceRoom           ResourceClass = "room"
	ResourceRoomType       ResourceClass = "room-type"
	ResourceRoomVariant    ResourceClass = "room-variant"
	ResourceCategory       ResourceClass = "category"
	ResourceCollection     ResourceClass = "collection"
	ResourceAttribute      ResourceClass = "attribute"
	ResourceDigitalContent ResourceClass = "digital-content"
	ResourcePageType       ResourceClass = "page-type"
	ResourceHotel          ResourceClass = "hotel"
	ResourceApp            ResourceClass = "app"
)

// AllResourceClasses lists every resource class that can carry metadata.
var AllResourceClasses = []ResourceClass{
	ResourceUser,
	ResourceStaff,
	ResourceOrder,
	ResourceFulfillment,
	ResourceCheckout,
	ResourceRoom,
	ResourceRoomType,
	ResourceRoomVariant,
	ResourceCategory,
	ResourceCollection,
	ResourceAttribute,
	ResourceDigitalContent,
	ResourcePageType,
	ResourceHotel,
	ResourceApp,
}

// ParseResourceClass converts a string to a ResourceClass
func ParseResourceClass(s string) (ResourceClass, error) {
	for _, c := range AllResourceClasses {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown resource class: %s", s)
}

// String returns the resource class name
func (c ResourceClass) String() string {
	return string(c)
}
