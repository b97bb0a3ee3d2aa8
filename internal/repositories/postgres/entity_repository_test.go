package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresEntityRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"owner_id", "owner_token", "metadata", "private_metadata", "created_at", "updated_at",
	}).AddRow(
		"user-1", nil, []byte(`{"color":"blue"}`), []byte(`{"channel":"internal"}`), now, now,
	)

	mock.ExpectQuery(`SELECT owner_id, owner_token, metadata, private_metadata, created_at, updated_at\s+FROM entities\s+WHERE class = \$1 AND id = \$2`).
		WithArgs("checkout", "chk-1").
		WillReturnRows(rows)

	entity, err := repo.GetByID(context.Background(), entities.ResourceCheckout, "chk-1")
	require.NoError(t, err)

	assert.Equal(t, entities.ResourceCheckout, entity.Class)
	assert.Equal(t, "chk-1", entity.ID)
	assert.Equal(t, "user-1", entity.OwnerID)
	assert.Empty(t, entity.OwnerToken)
	assert.Equal(t, entities.Metadata{"color": "blue"}, entity.Metadata)
	assert.Equal(t, entities.Metadata{"channel": "internal"}, entity.PrivateMetadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEntityRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)

	mock.ExpectQuery(`SELECT owner_id, owner_token, metadata, private_metadata`).
		WithArgs("order", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"owner_id", "owner_token", "metadata", "private_metadata", "created_at", "updated_at",
		}))

	_, err = repo.GetByID(context.Background(), entities.ResourceOrder, "missing")
	assert.ErrorIs(t, err, repositories.ErrEntityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEntityRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)
	entity := entities.NewEntity(entities.ResourceRoom, "room-1")

	mock.ExpectExec(`INSERT INTO entities`).
		WithArgs("room", "room-1", sqlmock.AnyArg(), sqlmock.AnyArg(),
			[]byte(`{}`), []byte(`{}`), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), entity)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEntityRepository_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)
	entity := entities.NewEntity(entities.ResourceRoom, "room-1")

	mock.ExpectExec(`INSERT INTO entities`).
		WillReturnError(&pq.Error{Code: "23505"})

	err = repo.Create(context.Background(), entity)
	assert.ErrorIs(t, err, repositories.ErrEntityAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEntityRepository_Create_Invalid(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)

	err = repo.Create(context.Background(), &entities.Entity{Class: entities.ResourceRoom})
	assert.Error(t, err)
}

func TestPostgresEntityRepository_UpsertMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)

	mock.ExpectExec(`UPDATE entities\s+SET private_metadata = private_metadata \|\| \$3::jsonb`).
		WithArgs("order", "ord-1", []byte(`{"invoice":"inv-9"}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpsertMetadata(context.Background(), entities.ResourceOrder, "ord-1",
		entities.PartitionPrivate, []entities.MetadataItem{{Key: "invoice", Value: "inv-9"}})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEntityRepository_UpsertMetadata_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)

	mock.ExpectExec(`UPDATE entities\s+SET metadata = metadata \|\| \$3::jsonb`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpsertMetadata(context.Background(), entities.ResourceOrder, "missing",
		entities.PartitionPublic, []entities.MetadataItem{{Key: "k", Value: "v"}})
	assert.ErrorIs(t, err, repositories.ErrEntityNotFound)
}

func TestPostgresEntityRepository_UpsertMetadata_RejectsEmptyKey(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)

	err = repo.UpsertMetadata(context.Background(), entities.ResourceOrder, "ord-1",
		entities.PartitionPublic, []entities.MetadataItem{{Key: "", Value: "v"}})
	assert.Error(t, err)
}

func TestPostgresEntityRepository_DeleteMetadataKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)

	mock.ExpectExec(`UPDATE entities\s+SET metadata = metadata - \$3::text\[\]`).
		WithArgs("room", "room-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.DeleteMetadataKeys(context.Background(), entities.ResourceRoom, "room-1",
		entities.PartitionPublic, []string{"color", "floor"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEntityRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresEntityRepository(db)

	mock.ExpectExec(`DELETE FROM entities WHERE class = \$1 AND id = \$2`).
		WithArgs("checkout", "chk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), entities.ResourceCheckout, "chk-1"))

	mock.ExpectExec(`DELETE FROM entities WHERE class = \$1 AND id = \$2`).
		WithArgs("checkout", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), entities.ResourceCheckout, "missing")
	assert.ErrorIs(t, err, repositories.ErrEntityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
