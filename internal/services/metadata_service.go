package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/repositories"
	"github.com/nvtienanh/metagate/internal/services/visibility"
	"github.com/nvtienanh/metagate/pkg/cache"
)

// MetadataServiceInterface defines the interface for metadata access
type MetadataServiceInterface interface {
	Read(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition) (entities.Metadata, error)
	Update(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, items []entities.MetadataItem) (entities.Metadata, error)
	Delete(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, keys []string) (entities.Metadata, error)
}

// DecisionRecorder receives the outcome of every policy evaluation.
type DecisionRecorder interface {
	RecordDecision(class string, partition string, allowed bool)
}

// MetadataService exposes an entity's metadata maps behind the visibility
// policy. Every accessor consults the evaluator before dereferencing the
// store; a denial is surfaced as an error, never as an empty map.
type MetadataService struct {
	entityRepo repositories.EntityRepository
	evaluator  visibility.EvaluatorInterface
	recorder   DecisionRecorder

	// Optional entity snapshot cache. Invalidated on every write.
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewMetadataService creates a new MetadataService without caching
func NewMetadataService(entityRepo repositories.EntityRepository, evaluator visibility.EvaluatorInterface) *MetadataService {
	return &MetadataService{
		entityRepo: entityRepo,
		evaluator:  evaluator,
	}
}

// NewMetadataServiceWithCache creates a new MetadataService with snapshot
// caching enabled
func NewMetadataServiceWithCache(
	entityRepo repositories.EntityRepository,
	evaluator visibility.EvaluatorInterface,
	c cache.Cache,
	cacheTTL time.Duration,
) *MetadataService {
	return &MetadataService{
		entityRepo: entityRepo,
		evaluator:  evaluator,
		cache:      c,
		cacheTTL:   cacheTTL,
	}
}

// SetDecisionRecorder attaches a recorder for policy decision metrics.
func (s *MetadataService) SetDecisionRecorder(recorder DecisionRecorder) {
	s.recorder = recorder
}

// Read returns one partition of an entity's metadata.
// Returns visibility.ErrNotFound if the entity does not exist or is hidden
// from the requester, visibility.ErrAuthorizationDenied on an uncloaked
// denial.
func (s *MetadataService) Read(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition) (entities.Metadata, error) {
	entity, err := s.fetchEntity(ctx, class, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(requester, entity, partition, visibility.ActionRead); err != nil {
		return nil, err
	}

	return entity.PartitionMap(partition).Clone(), nil
}

// Update upserts entries into one partition of an entity's metadata and
// returns the resulting map. Writes are gated by the policy's modify rules.
func (s *MetadataService) Update(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, items []entities.MetadataItem) (entities.Metadata, error) {
	if err := entities.ValidateItems(items); err != nil {
		return nil, fmt.Errorf("invalid metadata items: %w", err)
	}

	entity, err := s.fetchEntity(ctx, class, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(requester, entity, partition, visibility.ActionWrite); err != nil {
		return nil, err
	}

	if err := s.entityRepo.UpsertMetadata(ctx, class, id, partition, items); err != nil {
		if errors.Is(err, repositories.ErrEntityNotFound) {
			return nil, fmt.Errorf("%s:%s: %w", class, id, visibility.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}
	s.invalidate(ctx, class, id)

	updated := entity.PartitionMap(partition).Clone()
	updated.Store(items)
	return updated, nil
}

// Delete removes keys from one partition of an entity's metadata and returns
// the resulting map. Missing keys are ignored.
func (s *MetadataService) Delete(ctx context.Context, requester *entities.Requester, class entities.ResourceClass, id string, partition entities.Partition, keys []string) (entities.Metadata, error) {
	if err := entities.ValidateKeys(keys); err != nil {
		return nil, fmt.Errorf("invalid metadata keys: %w", err)
	}

	entity, err := s.fetchEntity(ctx, class, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(requester, entity, partition, visibility.ActionWrite); err != nil {
		return nil, err
	}

	if err := s.entityRepo.DeleteMetadataKeys(ctx, class, id, partition, keys); err != nil {
		if errors.Is(err, repositories.ErrEntityNotFound) {
			return nil, fmt.Errorf("%s:%s: %w", class, id, visibility.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete metadata: %w", err)
	}
	s.invalidate(ctx, class, id)

	updated := entity.PartitionMap(partition).Clone()
	updated.DeleteKeys(keys)
	return updated, nil
}

// authorize runs the evaluator and records the decision.
func (s *MetadataService) authorize(requester *entities.Requester, entity *entities.Entity, partition entities.Partition, action visibility.Action) error {
	err := s.evaluator.Authorize(requester, entity, partition, action)
	if s.recorder != nil {
		s.recorder.RecordDecision(entity.Class.String(), string(partition), err == nil)
	}
	return err
}

// fetchEntity loads an entity snapshot, consulting the cache first.
func (s *MetadataService) fetchEntity(ctx context.Context, class entities.ResourceClass, id string) (*entities.Entity, error) {
	key := snapshotKey(class, id)

	if s.cache != nil {
		if cached, found := s.cache.Get(ctx, key); found {
			if entity, ok := cached.(*entities.Entity); ok {
				return entity, nil
			}
		}
	}

	entity, err := s.entityRepo.GetByID(ctx, class, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEntityNotFound) {
			return nil, fmt.Errorf("%s:%s: %w", class, id, visibility.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch entity: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, entity, s.cacheTTL)
	}

	return entity, nil
}

// invalidate drops the cached snapshot after a write.
func (s *MetadataService) invalidate(ctx context.Context, class entities.ResourceClass, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, snapshotKey(class, id))
	}
}

func snapshotKey(class entities.ResourceClass, id string) string {
	return fmt.Sprintf("entity:%s:%s", class, id)
}
