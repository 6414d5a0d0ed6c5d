// Package session holds the token slot of each dashboard session.
//
// Every browser session owns one slot. Tabs that share a session share the slot, and a
// sign-out in one tab is only observed by another tab on its next guard evaluation.
package session

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// Store is a single token slot. An empty slot reads as ("", nil).
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Provider resolves the slot belonging to the caller of a request.
type Provider interface {
	StoreFor(c *fiber.Ctx) Store
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns an empty slot, optionally pre-filled.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// MemoryProvider keys MemoryStores by session id cookie. Slots are never expired,
// so it only suits single-process deployments and tests.
type MemoryProvider struct {
	ids    *idCookie
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryProvider builds a provider using the given session cookie settings.
func NewMemoryProvider(cfg CookieConfig) *MemoryProvider {
	return &MemoryProvider{ids: newIDCookie(cfg), stores: make(map[string]*MemoryStore)}
}

func (p *MemoryProvider) StoreFor(c *fiber.Ctx) Store {
	sid := p.ids.ensure(c)
	p.mu.Lock()
	defer p.mu.Unlock()
	store, ok := p.stores[sid]
	if !ok {
		store = NewMemoryStore("")
		p.stores[sid] = store
	}
	return store
}
