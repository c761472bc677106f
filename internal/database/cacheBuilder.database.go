package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type KeyType interface {
	string | uuid.UUID
}

// CacheBuilder provides a fluent interface over the valkey client for the
// small set of operations this service needs: string/struct get, set with
// TTL, and delete.
type CacheBuilder struct {
	cache      valkey.Client
	key        string
	value      string
	ttl        time.Duration
	ctx        context.Context
	ctxTimeout time.Duration
	err        error
}

func NewCacheBuilder[K KeyType](cache valkey.Client, key K) *CacheBuilder {
	builder := CacheBuilder{
		cache:      cache,
		ttl:        time.Hour,
		ctxTimeout: 5 * time.Second,
		ctx:        context.Background(),
	}

	switch k := any(key).(type) {
	case string:
		builder.key = k
	case uuid.UUID:
		builder.key = k.String()
	}

	return &builder
}

func (cb *CacheBuilder) WithValue(value string) *CacheBuilder {
	cb.value = value
	return cb
}

func (cb *CacheBuilder) WithStruct(value any) *CacheBuilder {
	bytes, err := json.Marshal(value)
	if err != nil {
		cb.err = fmt.Errorf("failed to marshal value to json: %w", err)
		return cb
	}

	cb.value = string(bytes)
	return cb
}

func (cb *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	cb.ttl = ttl
	return cb
}

func (cb *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	cb.ctx = ctx
	return cb
}

// Get unmarshals the cached value into dest. The boolean reports whether the
// key was present.
func (cb *CacheBuilder) Get(dest any) (bool, error) {
	if cb.err != nil {
		return false, cb.err
	}

	ctx, cancel := context.WithTimeout(cb.ctx, cb.ctxTimeout)
	defer cancel()

	resp := cb.cache.Do(ctx, cb.cache.B().Get().Key(cb.key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache key %s: %w", cb.key, err)
	}

	raw, err := resp.AsBytes()
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", cb.key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache key %s: %w", cb.key, err)
	}

	return true, nil
}

func (cb *CacheBuilder) GetString() (string, bool, error) {
	if cb.err != nil {
		return "", false, cb.err
	}

	ctx, cancel := context.WithTimeout(cb.ctx, cb.ctxTimeout)
	defer cancel()

	resp := cb.cache.Do(ctx, cb.cache.B().Get().Key(cb.key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cache key %s: %w", cb.key, err)
	}

	value, err := resp.ToString()
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache key %s: %w", cb.key, err)
	}

	return value, true, nil
}

func (cb *CacheBuilder) Set() error {
	if cb.err != nil {
		return cb.err
	}

	ctx, cancel := context.WithTimeout(cb.ctx, cb.ctxTimeout)
	defer cancel()

	cmd := cb.cache.B().Set().Key(cb.key).Value(cb.value).Ex(cb.ttl).Build()
	if err := cb.cache.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", cb.key, err)
	}

	return nil
}

func (cb *CacheBuilder) Delete() error {
	if cb.err != nil {
		return cb.err
	}

	ctx, cancel := context.WithTimeout(cb.ctx, cb.ctxTimeout)
	defer cancel()

	if err := cb.cache.Do(ctx, cb.cache.B().Del().Key(cb.key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", cb.key, err)
	}

	return nil
}
