// Package cache is the redis read-through layer in front of the repositories.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"relais/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Service keeps JSON snapshots of rows in redis. A nil *Service is valid and
// never hits, so the store runs unchanged without redis.
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

func NewService(client *redis.Client, ttl time.Duration) *Service {
	return &Service{client: client, ttl: ttl}
}

// Put stores value under key for the configured TTL.
func (s *Service) Put(ctx context.Context, key string, value interface{}) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Lookup decodes the value stored under key into dest and reports whether
// there was one.
func (s *Service) Lookup(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s == nil {
		return false, nil
	}
	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("miss")
		return false, nil
	case err != nil:
		metrics.RecordCacheLookup("error")
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.RecordCacheLookup("error")
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	metrics.RecordCacheLookup("hit")
	return true, nil
}

// Invalidate drops keys. Writers call it after every mutation of a cached row.
func (s *Service) Invalidate(ctx context.Context, keys ...string) error {
	if s == nil || len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Remember returns the cached value for key, or calls load and caches its
// result. Redis failures fall through to load; a nil result is not cached.
func Remember[T any](ctx context.Context, s *Service, key string, load func() (*T, error)) (*T, error) {
	var cached T
	if found, _ := s.Lookup(ctx, key, &cached); found {
		return &cached, nil
	}

	v, err := load()
	if err != nil || v == nil {
		return v, err
	}
	_ = s.Put(ctx, key, v)
	return v, nil
}

// Invalidator drops cached keys.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Pending records invalidations made inside a database transaction so they
// can be applied once it commits.
type Pending struct {
	target Invalidator
	mu     sync.Mutex
	keys   []string
}

func NewPending(target Invalidator) *Pending {
	return &Pending{target: target}
}

// Invalidate records keys; nothing is dropped until Flush.
func (p *Pending) Invalidate(_ context.Context, keys ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		if !slices.Contains(p.keys, k) {
			p.keys = append(p.keys, k)
		}
	}
	return nil
}

// Flush forwards the recorded keys to the target.
func (p *Pending) Flush(ctx context.Context) error {
	p.mu.Lock()
	keys := p.keys
	p.keys = nil
	p.mu.Unlock()
	return p.target.Invalidate(ctx, keys...)
}
