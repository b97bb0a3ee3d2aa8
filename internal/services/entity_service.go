package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/repositories"
	"github.com/nvtienanh/metagate/internal/services/visibility"
)

// EntityServiceInterface defines the interface for entity lifecycle
type EntityServiceInterface interface {
	Register(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, ownerID string, ownerToken string) (*entities.Entity, error)
	Remove(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string) error
}

// EntityService manages the lifecycle of entity records. Registration and
// removal are administrative operations gated by the class's managing
// permission; the metadata maps are created empty with the entity and
// destroyed with it.
type EntityService struct {
	entityRepo repositories.EntityRepository
}

// NewEntityService creates a new EntityService
func NewEntityService(entityRepo repositories.EntityRepository) *EntityService {
	return &EntityService{entityRepo: entityRepo}
}

// Register creates an entity with empty metadata maps.
func (s *EntityService) Register(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, ownerID string, ownerToken string) (*entities.Entity, error) {
	policy, err := visibility.PolicyFor(class)
	if err != nil {
		return nil, err
	}
	if !requester.HasPermission(policy.ManagingPermission) {
		return nil, fmt.Errorf("register %s:%s: %w", class, id, visibility.ErrAuthorizationDenied)
	}

	entity := entities.NewEntity(class, id)
	entity.OwnerID = ownerID
	entity.OwnerToken = ownerToken

	if err := s.entityRepo.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to register entity: %w", err)
	}

	return entity, nil
}

// Remove deletes an entity together with both metadata maps.
func (s *EntityService) Remove(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string) error {
	policy, err := visibility.PolicyFor(class)
	if err != nil {
		return err
	}
	if !requester.HasPermission(policy.ManagingPermission) {
		return fmt.Errorf("remove %s:%s: %w", class, id, visibility.ErrAuthorizationDenied)
	}

	if err := s.entityRepo.Delete(ctx, class, id); err != nil {
		if errors.Is(err, repositories.ErrEntityNotFound) {
			return fmt.Errorf("%s:%s: %w", class, id, visibility.ErrNotFound)
		}
		return fmt.Errorf("failed to remove entity: %w", err)
	}

	return nil
}
