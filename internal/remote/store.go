// Package remote talks to the backend that owns the authoritative todo list.
package remote

import (
	"context"
	"errors"

	"github.com/idilsaglam/tadasync/internal/model"
)

var (
	ErrNotFound      = errors.New("todo not found")
	ErrEmptyResponse = errors.New("backend returned no data")

	ErrNotConfigured     = errors.New("remote store not configured")
	ErrAlreadyConfigured = errors.New("remote store already configured")
)

// Store is the backend contract: list, create and delete. Implementations do
// no caching; every List is a full snapshot.
type Store interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, in model.NewItem) (model.Item, error)
	Delete(ctx context.Context, id string) error
}
