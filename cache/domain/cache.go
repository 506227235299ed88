package domain

import (
	"context"
	"errors"
	"time"
)

// Namespace identifies an independently configured partition of the cache.
// Keys never collide across namespaces.
type Namespace string

const (
	NamespaceUser         Namespace = "user"
	NamespaceSubscription Namespace = "subscription"
	NamespaceSettings     Namespace = "settings"
	NamespaceFiles        Namespace = "files"
)

// Namespaces lists every namespace the service is created with.
var Namespaces = []Namespace{
	NamespaceUser,
	NamespaceSubscription,
	NamespaceSettings,
	NamespaceFiles,
}

// DefaultTTLs are the lifetimes used when configuration does not override them.
var DefaultTTLs = map[Namespace]time.Duration{
	NamespaceUser:         300 * time.Second,
	NamespaceSubscription: 600 * time.Second,
	NamespaceSettings:     1800 * time.Second,
	NamespaceFiles:        120 * time.Second,
}

var ErrUnknownNamespace = errors.New("unknown cache namespace")

// NamespaceConfig is the fixed, start-up configuration of a namespace.
type NamespaceConfig struct {
	Name       Namespace
	DefaultTTL time.Duration
}

// Store is a single namespace of the TTL cache.
//
// An entry is never returned once its expiry has passed. Expired entries may
// still be listed by Keys until a Get, Delete, Clear or Cleanup touches them.
type Store interface {
	Namespace() Namespace
	DefaultTTL() time.Duration

	// Get returns the stored value, or ok=false when absent or expired. An
	// expired entry is removed as a side effect.
	Get(ctx context.Context, key string) (value any, ok bool, err error)

	// Set stores value under key with the namespace default TTL, overwriting
	// any previous entry.
	Set(ctx context.Context, key string, value any) error

	// SetWithTTL stores value under key with an explicit lifetime.
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// Keys returns every stored key, expired ones included.
	Keys(ctx context.Context) ([]string, error)

	// Cleanup purges expired entries and reports how many were removed. Only
	// the explicit sweeper calls it.
	Cleanup(ctx context.Context) (int, error)
}

// NamespaceStats summarises one namespace for the stats endpoint.
type NamespaceStats struct {
	Namespace  Namespace `json:"namespace"`
	DefaultTTL string    `json:"default_ttl"`
	Keys       int       `json:"keys"`
}
