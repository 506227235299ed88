package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/AzielCF/az-storage/cache/domain"
	"github.com/AzielCF/az-storage/infrastructure/valkey"
)

// ValkeyStore implements domain.Store on Valkey. Expiry is native (PX), so an
// expired key is never returned nor listed. Values are stored as JSON and read
// back as json.RawMessage.
type ValkeyStore struct {
	client *valkey.Client
	cfg    domain.NamespaceConfig
	prefix string
}

// NewValkeyStore creates a namespace living under "<prefix>cache:<namespace>:".
func NewValkeyStore(client *valkey.Client, cfg domain.NamespaceConfig) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		cfg:    cfg,
		prefix: client.Key("cache", string(cfg.Name)) + ":",
	}
}

func (s *ValkeyStore) fullKey(key string) string {
	return s.prefix + key
}

func (s *ValkeyStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeyStore) Namespace() domain.Namespace { return s.cfg.Name }
func (s *ValkeyStore) DefaultTTL() time.Duration   { return s.cfg.DefaultTTL }

func (s *ValkeyStore) Get(ctx context.Context, key string) (any, bool, error) {
	cmd := s.inner().B().Get().Key(s.fullKey(key)).Build()

	data, err := s.inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s cache entry: %w", s.cfg.Name, err)
	}
	return json.RawMessage(data), true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value any) error {
	return s.SetWithTTL(ctx, key, value, s.cfg.DefaultTTL)
}

func (s *ValkeyStore) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s cache entry: %w", s.cfg.Name, err)
	}

	cmd := s.inner().B().Set().
		Key(s.fullKey(key)).
		Value(string(data)).
		Px(ttl).
		Build()

	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save %s cache entry: %w", s.cfg.Name, err)
	}
	return nil
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	cmd := s.inner().B().Del().Key(s.fullKey(key)).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete %s cache entry: %w", s.cfg.Name, err)
	}
	return nil
}

func (s *ValkeyStore) Clear(ctx context.Context) error {
	keys, err := s.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	cmd := s.inner().B().Del().Key(keys...).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to clear %s cache: %w", s.cfg.Name, err)
	}
	return nil
}

func (s *ValkeyStore) Keys(ctx context.Context) ([]string, error) {
	full, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(full))
	for _, k := range full {
		keys = append(keys, strings.TrimPrefix(k, s.prefix))
	}
	return keys, nil
}

// Cleanup is a no-op for Valkey since expiration is handled by TTL.
func (s *ValkeyStore) Cleanup(ctx context.Context) (int, error) {
	return 0, nil
}

// scan walks the namespace with SCAN so large keyspaces do not block the server.
func (s *ValkeyStore) scan(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.inner().B().Scan().Cursor(cursor).Match(s.prefix + "*").Count(100).Build()
		result, err := s.inner().Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s cache: %w", s.cfg.Name, err)
		}

		keys = append(keys, result.Elements...)
		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
