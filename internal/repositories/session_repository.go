package repositories

import "context"

// SessionRepository persists the client session as string key/value pairs,
// the way browser storage does. Get returns "" for a missing key.
type SessionRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
