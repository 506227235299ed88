package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/AzielCF/az-storage/infrastructure/valkey"
)

const (
	lockWaitTime = 50 * time.Millisecond // Time between lock acquisition attempts
)

// Lua script for atomic lock release (only delete if token matches)
const releaseLockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Lua script for lock renewal (only extend if token matches)
const renewLockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

var ErrLockTimeout = errors.New("upload lock acquisition timed out")

// ValkeyUploadLocker serializes uploads of one user across every instance
// sharing the Valkey server.
type ValkeyUploadLocker struct {
	client *valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyUploadLocker creates a locker whose locks expire after ttl, so a
// crashed holder cannot block a user forever. Waiting is bounded by ttl too.
// A holder extends its lock every ttl/3 until it unlocks.
func NewValkeyUploadLocker(client *valkey.Client, ttl time.Duration) *ValkeyUploadLocker {
	return &ValkeyUploadLocker{
		client: client,
		prefix: client.Key("lock", "upload") + ":",
		ttl:    ttl,
	}
}

func (l *ValkeyUploadLocker) inner() valkeylib.Client {
	return l.client.Inner()
}

func (l *ValkeyUploadLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := l.prefix + userID
	token := uuid.New().String() // Unique token to ensure we only release our own lock
	deadline := time.Now().Add(l.ttl)

	for attempt := 1; ; attempt++ {
		// SET key token NX PX ttl
		cmd := l.inner().B().Set().
			Key(key).
			Value(token).
			Nx().
			Px(l.ttl).
			Build()

		err := l.inner().Do(ctx, cmd).Error()
		if err == nil {
			stop := make(chan struct{})
			done := make(chan struct{})
			go l.keepAlive(key, token, stop, done)

			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					<-done
					l.release(key, token)
				})
			}, nil
		}
		if !valkeylib.IsValkeyNil(err) {
			logrus.Debugf("[UPLOAD] Lock attempt %d failed for %s: %v", attempt, userID, err)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w for user %s", ErrLockTimeout, userID)
		}

		// Wait with random jitter to avoid thundering herd
		sleepDuration := lockWaitTime + time.Duration(rand.Intn(20))*time.Millisecond
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepDuration):
		}
	}
}

// keepAlive extends the lock while its holder is still writing. It stops when
// stop is closed or when the lock is no longer ours.
func (l *ValkeyUploadLocker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := l.ttl / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			cmd := l.inner().B().Eval().
				Script(renewLockScript).
				Numkeys(1).
				Key(key).
				Arg(token, strconv.FormatInt(l.ttl.Milliseconds(), 10)).
				Build()
			renewed, err := l.inner().Do(ctx, cmd).AsInt64()
			cancel()

			if err != nil {
				logrus.Warnf("[UPLOAD] Failed to extend lock %s: %v", key, err)
				continue
			}
			if renewed == 0 {
				logrus.Warnf("[UPLOAD] Lock %s expired before it was extended", key)
				return
			}
		}
	}
}

// release runs on its own context: the request context may already be done.
func (l *ValkeyUploadLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := l.inner().B().Eval().
		Script(releaseLockScript).
		Numkeys(1).
		Key(key).
		Arg(token).
		Build()

	if err := l.inner().Do(ctx, cmd).Error(); err != nil {
		logrus.Warnf("[UPLOAD] Failed to release lock %s: %v", key, err)
	}
}
