package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/idilsaglam/tadasync/internal/model"
)

// MemoryEndpoint selects the in-process store.
const MemoryEndpoint = "memory://"

// Memory is an in-process Store for local development. It keeps insertion
// order and assigns IDs and timestamps the way the backend does.
type Memory struct {
	mu    sync.Mutex
	items []model.Item
	now   func() time.Time
}

func NewMemory(seed ...model.Item) *Memory {
	m := &Memory{now: time.Now}
	m.items = append(m.items, seed...)
	return m
}

func (m *Memory) List(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *Memory) Create(ctx context.Context, in model.NewItem) (model.Item, error) {
	if err := ctx.Err(); err != nil {
		return model.Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	it := model.Item{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.items = append(m.items, it)
	return it, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, ErrNotFound)
}
