package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("kvstore: key not found")

// Store persists small JSON documents by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the document at key into out.
func GetJSON(ctx context.Context, s Store, key string, out any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// Scoped prefixes every key so that clients never see each other's values.
type Scoped struct {
	inner  Store
	prefix string
}

func NewScoped(inner Store, namespace string) *Scoped {
	return &Scoped{inner: inner, prefix: "client:" + strings.TrimSpace(namespace) + ":"}
}

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Put(ctx context.Context, key string, value []byte) error {
	return s.inner.Put(ctx, s.prefix+key, value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close is a no-op; the shared store outlives its scopes.
func (s *Scoped) Close() error { return nil }

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("kvstore: empty key")
	}
	return nil
}
