package repositories

import (
	"context"
	"errors"

	"github.com/nvtienanh/metagate/internal/entities"
)

var (
	// ErrAccountNotFound is returned when no account exists for the ID.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAppNotFound is returned when no app matches the ID or token.
	ErrAppNotFound = errors.New("app not found")
)

// PermissionRepository defines the interface for identity and permission
// resolution
type PermissionRepository interface {
	// GetAccount retrieves an account by ID.
	// Returns ErrAccountNotFound if the account does not exist.
	GetAccount(ctx context.Context, accountID string) (*entities.Account, error)

	// PermissionsForAccount returns the granted permission set of an account.
	// Customers have an empty set.
	PermissionsForAccount(ctx context.Context, accountID string) ([]entities.Permission, error)

	// GetAppByToken retrieves an active app by its auth token.
	// Returns ErrAppNotFound if no active app matches.
	GetAppByToken(ctx context.Context, token string) (*entities.App, error)

	// PermissionsForApp returns the granted permission set of an app.
	PermissionsForApp(ctx context.Context, appID string) ([]entities.Permission, error)
}
