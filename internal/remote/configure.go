package remote

import (
	"context"
	"sync"
)

var (
	mu      sync.Mutex
	current Store
)

// Configure sets up the process-wide connection to the backend. It must run
// once at startup, before any controller is built. Reset undoes it.
func Configure(ctx context.Context, opts Options) (Store, error) {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return nil, ErrAlreadyConfigured
	}

	s, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	current = s
	return s, nil
}

// Open builds a Store for opts without touching process-wide state.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Endpoint == MemoryEndpoint {
		return NewMemory(), nil
	}
	return NewGraphQL(ctx, opts)
}

// Default returns the store installed by Configure.
func Default() (Store, error) {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return nil, ErrNotConfigured
	}
	return current, nil
}

// Reset drops the configured store. Tests call it between cases.
func Reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}
