package application

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/AzielCF/az-storage/quota/domain"
)

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string]int64
	listCalls int
	listErr   error
	uploadErr error
	uploads   []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string]int64)}
}

func (f *fakeObjectStore) seed(path string, size int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = size
}

func (f *fakeObjectStore) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.ObjectInfo
	for path, size := range f.objects {
		if strings.HasPrefix(path, prefix) {
			out = append(out, domain.ObjectInfo{Name: strings.TrimPrefix(path, prefix), Size: size})
		}
	}
	return out, nil
}

func (f *fakeObjectStore) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) (domain.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return domain.StoredFile{}, f.uploadErr
	}
	if body != nil {
		if _, err := io.Copy(io.Discard, body); err != nil {
			return domain.StoredFile{}, err
		}
	}
	f.objects[path] = size
	f.uploads = append(f.uploads, path)
	return domain.StoredFile{Path: path, FullPath: "user-files/" + path, Size: size, ContentType: contentType}, nil
}

type profileUpdate struct {
	userID string
	usage  domain.UsageSnapshot
	at     time.Time
}

type fakeProfiles struct {
	mu        sync.Mutex
	rows      map[string]*domain.Profile
	gets      int
	updates   []profileUpdate
	updateErr error
	ids       []string
}

func (f *fakeProfiles) Create(ctx context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = make(map[string]*domain.Profile)
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if p, ok := f.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (f *fakeProfiles) ListIDs(ctx context.Context) ([]string, error) { return f.ids, nil }

func (f *fakeProfiles) UpdateStorageUsage(ctx context.Context, userID string, usage domain.UsageSnapshot, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, profileUpdate{userID: userID, usage: usage, at: at})
	if p, ok := f.rows[userID]; ok {
		p.StorageUsed = usage.TotalSize
		p.FilesCount = usage.FilesCount
		p.UpdatedAt = at
	}
	return nil
}

type fakeSubscriptions struct {
	subs  map[string]*domain.Subscription
	err   error
	calls int
}

func (f *fakeSubscriptions) Upsert(ctx context.Context, sub *domain.Subscription) error {
	if f.subs == nil {
		f.subs = make(map[string]*domain.Subscription)
	}
	f.subs[sub.UserID] = sub
	return nil
}

func (f *fakeSubscriptions) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if sub, ok := f.subs[userID]; ok {
		return sub, nil
	}
	return nil, domain.ErrSubscriptionNotFound
}
