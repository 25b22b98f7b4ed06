// Package dedup decides whether an article is new or already stored,
// atomically per identity key.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"newsscraper/pkg/models"
)

// ErrConflict is returned by stores when the identity key already exists.
var ErrConflict = errors.New("article already stored")

// Status is the outcome of an accept decision.
type Status int

const (
	Inserted Status = iota
	AlreadyExists
)

// Store is the persistence contract the gateway consumes. Insert must
// return ErrConflict when the key exists.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Insert(ctx context.Context, key string, fingerprint string, article models.Article) error
}

// Gateway serializes accept decisions per identity key so two pipelines
// racing on the same canonical URL cannot both insert.
type Gateway struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGateway wraps a store.
func NewGateway(store Store) *Gateway {
	return &Gateway{store: store, locks: make(map[string]*sync.Mutex)}
}

// Accept records the article unless its identity key is already present.
// The identity key is the article's canonical URL.
func (g *Gateway) Accept(ctx context.Context, article models.Article) (Status, error) {
	key := article.URL

	lock := g.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	exists, err := g.store.Exists(ctx, key)
	if err != nil {
		return AlreadyExists, err
	}
	if exists {
		return AlreadyExists, nil
	}

	err = g.store.Insert(ctx, key, Fingerprint(article.Content), article)
	if errors.Is(err, ErrConflict) {
		return AlreadyExists, nil
	}
	if err != nil {
		return AlreadyExists, err
	}
	return Inserted, nil
}

func (g *Gateway) keyLock(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	return lock
}

// Fingerprint hashes normalized content for near-duplicate detection
// across mirrored URLs.
func Fingerprint(content string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(content), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// KeyID derives the stable store document id from an identity key.
func KeyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
