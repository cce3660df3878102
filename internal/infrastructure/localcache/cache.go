// Package localcache keeps small JSON documents on local disk so reads can
// survive a database outage. A missing or broken cache is never fatal: Open
// falls back to Nop.
package localcache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("localcache: key not found")

// Cache is a typed key/value store. Values are JSON-encoded.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Put(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	ListPrefix(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Nop is the cache used when no store is available.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) error { return ErrNotFound }

func (Nop) Put(context.Context, string, interface{}) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }

func (Nop) ListPrefix(context.Context, string) ([]string, error) { return []string{}, nil }

func (Nop) Close() error { return nil }

var _ Cache = Nop{}
