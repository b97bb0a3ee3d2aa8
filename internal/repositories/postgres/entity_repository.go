package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/repositories"
)

// PostgresEntityRepository implements EntityRepository using PostgreSQL
type PostgresEntityRepository struct {
	db *sql.DB
}

// NewPostgresEntityRepository creates a new PostgreSQL entity repository
func NewPostgresEntityRepository(db *sql.DB) repositories.EntityRepository {
	return &PostgresEntityRepository{db: db}
}

// partitionColumn maps a partition to its JSONB column. Both partitions are
// known constants, so the column name is safe to interpolate.
func partitionColumn(p entities.Partition) string {
	if p == entities.PartitionPrivate {
		return "private_metadata"
	}
	return "metadata"
}

// GetByID retrieves an entity snapshot including both metadata maps
func (r *PostgresEntityRepository) GetByID(ctx context.Context, class entities.ResourceClass, id string) (*entities.Entity, error) {
	query := `
		SELECT owner_id, owner_token, metadata, private_metadata, created_at, updated_at
		FROM entities
		WHERE class = $1 AND id = $2
	`
	var (
		ownerID     sql.NullString
		ownerToken  sql.NullString
		metaJSON    []byte
		privateJSON []byte
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := r.db.QueryRowContext(ctx, query, string(class), id).Scan(
		&ownerID, &ownerToken, &metaJSON, &privateJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity %s:%s: %w", class, id, err)
	}

	entity := entities.NewEntity(class, id)
	entity.OwnerID = ownerID.String
	entity.OwnerToken = ownerToken.String
	entity.CreatedAt = createdAt
	entity.UpdatedAt = updatedAt

	if err := json.Unmarshal(metaJSON, &entity.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	if err := json.Unmarshal(privateJSON, &entity.PrivateMetadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal private metadata: %w", err)
	}

	return entity, nil
}

// Create persists a new entity with empty metadata maps
func (r *PostgresEntityRepository) Create(ctx context.Context, entity *entities.Entity) error {
	if err := entity.Validate(); err != nil {
		return fmt.Errorf("invalid entity: %w", err)
	}

	metaJSON, err := json.Marshal(entity.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	privateJSON, err := json.Marshal(entity.PrivateMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal private metadata: %w", err)
	}

	query := `
		INSERT INTO entities (class, id, owner_id, owner_token, metadata, private_metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		string(entity.Class), entity.ID,
		nullable(entity.OwnerID), nullable(entity.OwnerToken),
		metaJSON, privateJSON, now, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repositories.ErrEntityAlreadyExists
		}
		return fmt.Errorf("failed to create entity %s: %w", entity, err)
	}

	return nil
}

// Delete removes an entity and its metadata maps
func (r *PostgresEntityRepository) Delete(ctx context.Context, class entities.ResourceClass, id string) error {
	query := `DELETE FROM entities WHERE class = $1 AND id = $2`
	result, err := r.db.ExecContext(ctx, query, string(class), id)
	if err != nil {
		return fmt.Errorf("failed to delete entity %s:%s: %w", class, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return repositories.ErrEntityNotFound
	}

	return nil
}

// UpsertMetadata merges the given items into one partition's map
func (r *PostgresEntityRepository) UpsertMetadata(ctx context.Context, class entities.ResourceClass, id string, partition entities.Partition, items []entities.MetadataItem) error {
	if err := entities.ValidateItems(items); err != nil {
		return fmt.Errorf("invalid metadata items: %w", err)
	}

	patch := make(entities.Metadata, len(items))
	patch.Store(items)
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata patch: %w", err)
	}

	column := partitionColumn(partition)
	query := fmt.Sprintf(`
		UPDATE entities
		SET %s = %s || $3::jsonb, updated_at = $4
		WHERE class = $1 AND id = $2
	`, column, column)
	result, err := r.db.ExecContext(ctx, query, string(class), id, patchJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert metadata for %s:%s: %w", class, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return repositories.ErrEntityNotFound
	}

	return nil
}

// DeleteMetadataKeys removes the given keys from one partition's map
func (r *PostgresEntityRepository) DeleteMetadataKeys(ctx context.Context, class entities.ResourceClass, id string, partition entities.Partition, keys []string) error {
	if err := entities.ValidateKeys(keys); err != nil {
		return fmt.Errorf("invalid metadata keys: %w", err)
	}

	column := partitionColumn(partition)
	query := fmt.Sprintf(`
		UPDATE entities
		SET %s = %s - $3::text[], updated_at = $4
		WHERE class = $1 AND id = $2
	`, column, column)
	result, err := r.db.ExecContext(ctx, query, string(class), id, pq.Array(keys), time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete metadata keys for %s:%s: %w", class, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return repositories.ErrEntityNotFound
	}

	return nil
}

// nullable converts an empty string to a NULL parameter.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
