package entities

import (
	"fmt"
	"time"
)

// Account is a platform login: a customer or a staff member.
type Account struct {
	ID        string
	Email     string
	IsStaff   bool
	IsActive  bool
	CreatedAt time.Time
}

// RequesterKind returns the requester kind this account authenticates as.
func (a *Account) RequesterKind() RequesterKind {
	if a.IsStaff {
		return RequesterStaff
	}
	return RequesterCustomer
}

// App is a third-party application credential installed on the platform.
// Apps authenticate with an opaque token and carry granted permissions like
// staff accounts do.
type App struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Validate checks if the app record is valid
func (a *App) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("app ID is required")
	}
	if a.Name == "" {
		return fmt.Errorf("app name is required")
	}
	return nil
}
