package todo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/idilsaglam/tadasync/internal/model"
)

// mockStore is a Store with call tracking and error injection.
type mockStore struct {
	mu sync.Mutex

	Items []model.Item
	seq   int
	clock time.Time

	// Error injection
	ListErr   error
	CreateErr error
	DeleteErr error

	// Call tracking
	ListCalls   int
	CreateCalls []model.NewItem
	DeleteCalls []string
}

func newMockStore(items ...model.Item) *mockStore {
	return &mockStore{
		Items: items,
		clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockStore) List(_ context.Context) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	out := make([]model.Item, len(m.Items))
	copy(out, m.Items)
	return out, nil
}

func (m *mockStore) Create(_ context.Context, in model.NewItem) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, in)
	if m.CreateErr != nil {
		return model.Item{}, m.CreateErr
	}

	m.seq++
	m.clock = m.clock.Add(time.Minute)
	it := model.Item{
		ID:          fmt.Sprintf("id-%d", m.seq),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   m.clock,
		UpdatedAt:   m.clock,
	}
	m.Items = append(m.Items, it)
	return it, nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	for i, it := range m.Items {
		if it.ID == id {
			m.Items = append(m.Items[:i], m.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no item %s", id)
}

func (m *mockStore) calls() (list, create, del int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls, len(m.CreateCalls), len(m.DeleteCalls)
}
