package dedup

import (
	"context"
	"sync"

	"newsscraper/pkg/models"
)

// MemoryStore keeps articles in process memory. Used when no store URI is
// configured, which makes deduplication batch-scoped.
type MemoryStore struct {
	mu       sync.Mutex
	articles map[string]models.Article
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[string]models.Article)}
}

// Exists reports whether the identity key was inserted before.
func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.articles[KeyID(key)]
	return ok, nil
}

// Insert stores the article; ErrConflict on a duplicate key.
func (s *MemoryStore) Insert(_ context.Context, key string, _ string, article models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := KeyID(key)
	if _, ok := s.articles[id]; ok {
		return ErrConflict
	}
	s.articles[id] = article
	return nil
}

// Len reports how many articles are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}
