package repository

import (
	"context"
	"sync"
)

// MemoryUploadLocker is a per-user mutex for single-instance deployments.
// Each user gets a one-slot channel so waiting can be abandoned through ctx.
type MemoryUploadLocker struct {
	mu    sync.Mutex
	slots map[string]*userSlot
}

type userSlot struct {
	ch   chan struct{}
	refs int
}

func NewMemoryUploadLocker() *MemoryUploadLocker {
	return &MemoryUploadLocker{slots: make(map[string]*userSlot)}
}

func (l *MemoryUploadLocker) Lock(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[userID]
	if !ok {
		slot = &userSlot{ch: make(chan struct{}, 1)}
		l.slots[userID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(userID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.drop(userID, slot)
		})
	}, nil
}

// drop forgets the slot once nobody holds or waits on it.
func (l *MemoryUploadLocker) drop(userID string, slot *userSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, userID)
	}
}
