package cartslot

import (
	"context"
)

// Repository stores one serialized cart per key. Writes replace the whole
// value and the last writer wins.
type Repository interface {
	// Load returns domain.ErrNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	// Clear removes key. Clearing an absent key is not an error.
	Clear(ctx context.Context, key string) error
}
