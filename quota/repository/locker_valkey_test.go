package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-storage/infrastructure/valkey"
)

func newTestValkey(t *testing.T) (*valkey.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	vk, err := valkey.NewClient(valkey.Config{Address: mr.Addr(), KeyPrefix: "azstorage-test", DisableCache: true})
	require.NoError(t, err)
	t.Cleanup(vk.Close)
	return vk, mr
}

const lockKey = "azstorage-test:lock:upload:u1"

func TestValkeyUploadLocker_SubSecondTTL(t *testing.T) {
	vk, mr := newTestValkey(t)
	l := NewValkeyUploadLocker(vk, 300*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockKey))
	assert.Equal(t, 300*time.Millisecond, mr.TTL(lockKey))

	unlock()
	assert.False(t, mr.Exists(lockKey))
	unlock()
}

func TestValkeyUploadLocker_WaiterAcquiresAfterRelease(t *testing.T) {
	vk, _ := newTestValkey(t)
	l := NewValkeyUploadLocker(vk, 2*time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "u1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		unlock2, err := l.Lock(ctx, "u1")
		if assert.NoError(t, err) {
			unlock2()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestValkeyUploadLocker_WaitIsBoundedByTTL(t *testing.T) {
	vk, _ := newTestValkey(t)
	l := NewValkeyUploadLocker(vk, 200*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "u1")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(ctx, "u1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	// other users are independent
	unlockOther, err := l.Lock(ctx, "u2")
	require.NoError(t, err)
	unlockOther()
}

func TestValkeyUploadLocker_HolderExtendsLock(t *testing.T) {
	vk, mr := newTestValkey(t)
	l := NewValkeyUploadLocker(vk, 300*time.Millisecond)

	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)

	mr.FastForward(250 * time.Millisecond)
	require.True(t, mr.Exists(lockKey))
	assert.Eventually(t, func() bool {
		return mr.TTL(lockKey) > 100*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond)

	// past the original lifetime the lock is still held
	mr.FastForward(100 * time.Millisecond)
	assert.True(t, mr.Exists(lockKey))

	unlock()
	assert.False(t, mr.Exists(lockKey))
}

func TestValkeyUploadLocker_ReleaseKeepsForeignLock(t *testing.T) {
	vk, mr := newTestValkey(t)
	l := NewValkeyUploadLocker(vk, time.Second)

	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)

	// the lock expired and someone else took it
	require.NoError(t, mr.Set(lockKey, "other-token"))
	unlock()

	got, err := mr.Get(lockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-token", got)
}
