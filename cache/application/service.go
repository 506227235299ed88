package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AzielCF/az-storage/cache/domain"
	"github.com/sirupsen/logrus"
)

// Service owns one Store per namespace. It is created once at start-up and
// injected wherever cached reads are needed.
type Service struct {
	stores map[domain.Namespace]domain.Store
}

// NewService requires a store for every namespace in domain.Namespaces.
func NewService(stores ...domain.Store) (*Service, error) {
	s := &Service{stores: make(map[domain.Namespace]domain.Store, len(stores))}
	for _, st := range stores {
		if _, dup := s.stores[st.Namespace()]; dup {
			return nil, fmt.Errorf("duplicate cache namespace %q", st.Namespace())
		}
		s.stores[st.Namespace()] = st
	}
	for _, ns := range domain.Namespaces {
		if _, ok := s.stores[ns]; !ok {
			return nil, fmt.Errorf("missing cache namespace %q", ns)
		}
	}
	return s, nil
}

// Store returns the namespace store, or ErrUnknownNamespace.
func (s *Service) Store(ns domain.Namespace) (domain.Store, error) {
	st, ok := s.stores[ns]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNamespace, ns)
	}
	return st, nil
}

// GetCachedData serves key from the namespace and falls back to recompute on a
// miss, caching its result at the namespace default TTL. Concurrent misses are
// not deduplicated; each caller runs recompute and the last write wins.
//
// Cache backend failures degrade to a miss (on read) or a skipped write; a
// recompute failure is returned unchanged and nothing is cached.
func GetCachedData[T any](ctx context.Context, s *Service, key string, ns domain.Namespace, recompute func(context.Context) (T, error)) (T, error) {
	var zero T

	st, err := s.Store(ns)
	if err != nil {
		return zero, err
	}

	cached, ok, err := st.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).Warnf("[CACHE] read of %s/%s failed, recomputing", ns, key)
	} else if ok {
		if v, decoded := decode[T](cached); decoded {
			return v, nil
		}
		logrus.Warnf("[CACHE] entry %s/%s has unexpected type %T, recomputing", ns, key, cached)
	}

	data, err := recompute(ctx)
	if err != nil {
		return zero, err
	}

	if err := st.Set(ctx, key, data); err != nil {
		logrus.WithError(err).Warnf("[CACHE] write of %s/%s failed", ns, key)
	}
	return data, nil
}

// decode accepts values stored natively (memory) or as JSON (Valkey).
func decode[T any](cached any) (T, bool) {
	if v, ok := cached.(T); ok {
		return v, true
	}

	var raw []byte
	switch c := cached.(type) {
	case json.RawMessage:
		raw = c
	case []byte:
		raw = c
	default:
		var zero T
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Put stores value in the namespace at its default TTL.
func (s *Service) Put(ctx context.Context, ns domain.Namespace, key string, value any) error {
	st, err := s.Store(ns)
	if err != nil {
		return err
	}
	return st.Set(ctx, key, value)
}

// Invalidate removes key from the namespace.
func (s *Service) Invalidate(ctx context.Context, ns domain.Namespace, key string) error {
	st, err := s.Store(ns)
	if err != nil {
		return err
	}
	return st.Delete(ctx, key)
}

// ClearUserCaches deletes every key that contains userID, in every namespace.
// It works from Keys, so already-expired entries are swept too.
func (s *Service) ClearUserCaches(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}

	removed := 0
	for _, ns := range domain.Namespaces {
		st := s.stores[ns]
		keys, err := st.Keys(ctx)
		if err != nil {
			return removed, fmt.Errorf("failed to list %s keys: %w", ns, err)
		}
		for _, key := range keys {
			if !strings.Contains(key, userID) {
				continue
			}
			if err := st.Delete(ctx, key); err != nil {
				return removed, fmt.Errorf("failed to delete %s/%s: %w", ns, key, err)
			}
			removed++
		}
	}

	logrus.Debugf("[CACHE] cleared %d entries for user %s", removed, userID)
	return removed, nil
}

// ClearAll empties every namespace.
func (s *Service) ClearAll(ctx context.Context) error {
	for _, ns := range domain.Namespaces {
		if err := s.stores[ns].Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", ns, err)
		}
	}
	return nil
}

// Stats reports the stored key count per namespace.
func (s *Service) Stats(ctx context.Context) ([]domain.NamespaceStats, error) {
	stats := make([]domain.NamespaceStats, 0, len(s.stores))
	for _, ns := range domain.Namespaces {
		st := s.stores[ns]
		keys, err := st.Keys(ctx)
		if err != nil {
			return nil, err
		}
		stats = append(stats, domain.NamespaceStats{
			Namespace:  ns,
			DefaultTTL: st.DefaultTTL().String(),
			Keys:       len(keys),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Namespace < stats[j].Namespace })
	return stats, nil
}

// Sweep purges expired entries from every namespace once.
func (s *Service) Sweep(ctx context.Context) int {
	total := 0
	for _, ns := range domain.Namespaces {
		n, err := s.stores[ns].Cleanup(ctx)
		if err != nil {
			logrus.WithError(err).Warnf("[CACHE] sweep of %s failed", ns)
			continue
		}
		total += n
	}
	return total
}

// StartSweeper runs Sweep every interval until ctx is done. It is the only
// proactive eviction; reads and writes stay lazy.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(ctx); n > 0 {
					logrus.Debugf("[CACHE] sweeper removed %d expired entries", n)
				}
			}
		}
	}()
}
