package balances

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

const keyPrefix = "walletdash:balances:"

// Mirror persists stored snapshots outside the process so a restarted or
// second dashboard instance can show the last known balances
type Mirror interface {
	Save(ctx context.Context, id string, snap Snapshot) error
	// Load returns ok=false when nothing is mirrored for id
	Load(ctx context.Context, id string) (snap Snapshot, ok bool, err error)
	Delete(ctx context.Context, id string) error
}

type mirrored struct {
	Balances  model.Balances `json:"balances"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// RedisMirror keeps snapshots in Redis with the book's idle TTL
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMirror connects to url (redis://...) and checks the connection
func NewRedisMirror(ctx context.Context, url string, ttl time.Duration) (*RedisMirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisMirrorWithClient(client, ttl), nil
}

// NewRedisMirrorWithClient wraps an existing client
func NewRedisMirrorWithClient(client *redis.Client, ttl time.Duration) *RedisMirror {
	return &RedisMirror{client: client, ttl: ttl}
}

func (m *RedisMirror) Save(ctx context.Context, id string, snap Snapshot) error {
	data, err := json.Marshal(mirrored{Balances: snap.Balances, FetchedAt: snap.FetchedAt})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := m.client.Set(ctx, keyPrefix+id, data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (m *RedisMirror) Load(ctx context.Context, id string) (Snapshot, bool, error) {
	data, err := m.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var rec mirrored
	if err := json.Unmarshal(data, &rec); err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return Snapshot{Balances: rec.Balances, FetchedAt: rec.FetchedAt}, true, nil
}

func (m *RedisMirror) Delete(ctx context.Context, id string) error {
	return m.client.Del(ctx, keyPrefix+id).Err()
}

// Close closes the Redis connection
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
