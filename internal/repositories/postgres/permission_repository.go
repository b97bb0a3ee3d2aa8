package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/repositories"
)

// PostgresPermissionRepository implements PermissionRepository using PostgreSQL
type PostgresPermissionRepository struct {
	db *sql.DB
}

// NewPostgresPermissionRepository creates a new PostgreSQL permission repository
func NewPostgresPermissionRepository(db *sql.DB) repositories.PermissionRepository {
	return &PostgresPermissionRepository{db: db}
}

// GetAccount retrieves an account by ID
func (r *PostgresPermissionRepository) GetAccount(ctx context.Context, accountID string) (*entities.Account, error) {
	query := `
		SELECT id, email, is_staff, is_active, created_at
		FROM accounts
		WHERE id = $1
	`
	account := &entities.Account{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&account.ID, &account.Email, &account.IsStaff, &account.IsActive, &account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}

	return account, nil
}

// PermissionsForAccount returns the granted permission set of an account
func (r *PostgresPermissionRepository) PermissionsForAccount(ctx context.Context, accountID string) ([]entities.Permission, error) {
	query := `
		SELECT permission
		FROM account_permissions
		WHERE account_id = $1
	`
	return r.queryPermissions(ctx, query, accountID)
}

// GetAppByToken retrieves an active app by its auth token
func (r *PostgresPermissionRepository) GetAppByToken(ctx context.Context, token string) (*entities.App, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM apps
		WHERE auth_token = $1 AND is_active = TRUE
	`
	app := &entities.App{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&app.ID, &app.Name, &app.IsActive, &app.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repositories.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app by token: %w", err)
	}

	return app, nil
}

// PermissionsForApp returns the granted permission set of an app
func (r *PostgresPermissionRepository) PermissionsForApp(ctx context.Context, appID string) ([]entities.Permission, error) {
	query := `
		SELECT permission
		FROM app_permissions
		WHERE app_id = $1
	`
	return r.queryPermissions(ctx, query, appID)
}

// queryPermissions runs a single-column permission query and parses the rows.
// Unknown permission names in the database are an error, not a skip: a typo
// in a grant must never silently widen or narrow access.
func (r *PostgresPermissionRepository) queryPermissions(ctx context.Context, query string, id string) ([]entities.Permission, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	defer rows.Close()

	var perms []entities.Permission
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perm, err := entities.ParsePermission(name)
		if err != nil {
			return nil, fmt.Errorf("invalid permission in store: %w", err)
		}
		perms = append(perms, perm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permissions: %w", err)
	}

	return perms, nil
}
