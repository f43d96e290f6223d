// Package storage persists bound accounts. The default backend is a flat
// JSON file; a PostgreSQL backend is available for shared deployments.
package storage

import (
	"context"

	"github.com/and161185/mys-helper/internal/model"
)

// Store is the account persistence contract.
type Store interface {
	// LoadAll returns every bound account in stable (bind) order.
	LoadAll(ctx context.Context) ([]*model.Account, error)

	// SaveAccount inserts or updates one account snapshot.
	SaveAccount(ctx context.Context, a *model.Account) error

	// DeleteAccount removes an account; errs.ErrNotFound when absent.
	DeleteAccount(ctx context.Context, uid string) error
}
