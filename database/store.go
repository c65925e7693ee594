package database

import "context"

// KV is one key/value pair returned by a prefix scan.
type KV struct {
	Key   string
	Value string
}

// Store is the flat key-value capability everything persists through:
// get, set, delete and scan-by-prefix. No transactions, no compare-and-swap,
// last write wins.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// GetByPrefix returns all pairs whose key starts with prefix, in
	// lexicographic key order.
	GetByPrefix(ctx context.Context, prefix string) ([]KV, error)
}
