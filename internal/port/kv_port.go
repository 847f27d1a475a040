package port

import "context"

// KVStore is a durable string key-value store.
// Get returns domain.ErrKeyNotFound for absent keys; Remove of an absent key succeeds.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
