package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store is the string-keyed persistence port notes and preferences are
// mirrored to. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, pairs ...Pair) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Pair is a single key/value write.
type Pair struct {
	Key   string
	Value string
}

var (
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt is returned when a stored value fails its integrity check.
	ErrCorrupt = errors.New("stored value is corrupt")
)

// Open returns a Store based on a URL: sqlite://<path> or mem://.
func Open(ctx context.Context, url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return openSQLite(ctx, url)
	case url == "mem://" || url == "mem:":
		return NewMem(), nil
	case url == "":
		return nil, errors.New("storage url is empty")
	default:
		return nil, fmt.Errorf("unsupported storage url %q", url)
	}
}
