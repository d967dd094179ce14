package ports

import "context"

// Fixed document keys. Each collection is stored wholesale under one key.
const (
	KeyUsers   = "app_users"
	KeySession = "user"
	KeyRecords = "app_records"
)

// KVStore is the durable document store the directory and ledger persist to.
// Values are raw JSON documents.
type KVStore interface {
	// Get returns domain.ErrKeyNotFound when key has never been written or
	// was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the whole document stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
