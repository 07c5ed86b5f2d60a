package domain

import (
	"context"
	"time"
)

// CacheRepository is a generic JSON cache. A miss is reported as ErrNotFound.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}
