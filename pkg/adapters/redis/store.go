// Package redis implements the entry store on Redis, for deployments where
// several clinic front-ends share one persistence backend.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/massanella/fichaflow/pkg/ports"
)

// Store implements ports.EntryStore using Redis. Snapshots live under
// prefix+id, membership in a ZSET index, and finalization in a companion
// SET.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*Store)

// WithTTL sets the expiration for entries. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for entries.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "fichaflow:entry:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(entryID string) string {
	return s.prefix + entryID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) finalizedKey() string {
	return s.prefix + "finalized"
}

// Save persists the snapshot and refreshes the index.
func (s *Store) Save(ctx context.Context, entryID string, snap ports.EntrySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(entryID), data, s.ttl)

	// Index score = expiry instant; entries without TTL park far in the
	// future so lazy cleanup never touches them.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: entryID})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the snapshot.
func (s *Store) Load(ctx context.Context, entryID string) (ports.EntrySnapshot, error) {
	val, err := s.client.Get(ctx, s.key(entryID)).Result()
	if err != nil {
		if err == backend.Nil {
			return ports.EntrySnapshot{}, ports.ErrEntryNotFound
		}
		return ports.EntrySnapshot{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snap ports.EntrySnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return ports.EntrySnapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Answers == nil {
		snap.Answers = make(map[string]any)
	}
	if snap.Computed == nil {
		snap.Computed = make(map[string]any)
	}
	return snap, nil
}

// Delete removes the entry, its index membership and finalized flag.
func (s *Store) Delete(ctx context.Context, entryID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(entryID))
	pipe.ZRem(ctx, s.indexKey(), entryID)
	pipe.SRem(ctx, s.finalizedKey(), entryID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns entry IDs, lazily pruning expired index members.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return ids, nil
}

// Finalize marks the entry complete via SET membership. Idempotent.
func (s *Store) Finalize(ctx context.Context, entryID string) error {
	exists, err := s.client.Exists(ctx, s.key(entryID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check entry existence: %w", err)
	}
	if exists == 0 {
		return ports.ErrEntryNotFound
	}
	return s.client.SAdd(ctx, s.finalizedKey(), entryID).Err()
}

// Finalized reports whether the entry has been finalized.
func (s *Store) Finalized(ctx context.Context, entryID string) (bool, error) {
	return s.client.SIsMember(ctx, s.finalizedKey(), entryID).Result()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
