package entities

import (
	"fmt"
	"time"
)

// Entity is a snapshot of one platform resource and its two metadata maps.
// Example: checkout:1f7c…#owned-by user:ab42…
//
// The maps are created empty with the entity and destroyed with it; they are
// only ever mutated through explicit store/delete operations.
type Entity struct {
	Class ResourceClass
	ID    string

	// OwnerID is the user account that owns this entity, for classes with an
	// ownership concept (user, staff, order, fulfillment, checkout). Empty
	// for catalog objects.
	OwnerID string

	// OwnerToken is the opaque token that establishes anonymous ownership of
	// a checkout created without an account. Empty elsewhere.
	OwnerToken string

	Metadata        Metadata // public partition
	PrivateMetadata Metadata // private partition

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntity creates an entity with empty metadata maps.
func NewEntity(class ResourceClass, id string) *Entity {
	return &Entity{
		Class:           class,
		ID:              id,
		Metadata:        make(Metadata),
		PrivateMetadata: make(Metadata),
	}
}

// Validate checks if the entity snapshot is valid
func (e *Entity) Validate() error {
	if e.Class == "" {
		return fmt.Errorf("resource class is required")
	}
	if e.ID == "" {
		return fmt.Errorf("entity ID is required")
	}
	return nil
}

// PartitionMap returns the metadata map for the given partition.
func (e *Entity) PartitionMap(p Partition) Metadata {
	if p == PartitionPrivate {
		return e.PrivateMetadata
	}
	return e.Metadata
}

// String returns a string representation of the entity reference.
// Format: class:id
func (e *Entity) String() string {
	return fmt.Sprintf("%s:%s", e.Class, e.ID)
}
