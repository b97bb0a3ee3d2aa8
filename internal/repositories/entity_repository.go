package repositories

import (
	"context"
	"errors"

	"github.com/nvtienanh/metagate/internal/entities"
)

// ErrEntityNotFound is returned when no entity exists for (class, id).
var ErrEntityNotFound = errors.New("entity not found")

// ErrEntityAlreadyExists is returned when an entity with the same
// (class, id) pair is already registered.
var ErrEntityAlreadyExists = errors.New("entity already exists")

// EntityRepository defines the interface for entity snapshot data access
type EntityRepository interface {
	// GetByID retrieves an entity snapshot including both metadata maps.
	// Returns ErrEntityNotFound if the entity does not exist.
	GetByID(ctx context.Context, class entities.ResourceClass, id string) (*entities.Entity, error)

	// Create persists a new entity with empty metadata maps
	Create(ctx context.Context, entity *entities.Entity) error

	// Delete removes an entity and its metadata maps
	Delete(ctx context.Context, class entities.ResourceClass, id string) error

	// UpsertMetadata merges the given items into one partition's map
	UpsertMetadata(ctx context.Context, class entities.ResourceClass, id string, partition entities.Partition, items []entities.MetadataItem) error

	// DeleteMetadataKeys removes the given keys from one partition's map.
	// Missing keys are ignored.
	DeleteMetadataKeys(ctx context.Context, class entities.ResourceClass, id string, partition entities.Partition, keys []string) error
}
