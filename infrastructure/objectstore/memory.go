package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AzielCF/az-storage/quota/domain"
)

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore is an in-process object store for development and tests.
type MemoryStore struct {
	bucket string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: make(map[string]memoryObject)}
}

// List mirrors a non-recursive bucket listing: nested paths collapse into one
// zero-size folder entry.
func (s *MemoryStore) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	folders := make(map[string]bool)
	var out []domain.ObjectInfo
	for path, obj := range s.objects {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		name := strings.TrimPrefix(path, prefix)
		if i := strings.Index(name, "/"); i >= 0 {
			folder := name[:i+1]
			if !folders[folder] {
				folders[folder] = true
				out = append(out, domain.ObjectInfo{Name: folder})
			}
			continue
		}
		out = append(out, domain.ObjectInfo{Name: name, Size: int64(len(obj.data)), LastModified: obj.modified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) (domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredFile{}, err
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("failed to read upload body: %w", err)
	}
	if size >= 0 && n != size {
		return domain.StoredFile{}, fmt.Errorf("upload body is %d bytes, expected %d", n, size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[path]; exists {
		return domain.StoredFile{}, fmt.Errorf("object %s already exists", path)
	}
	s.objects[path] = memoryObject{data: buf.Bytes(), contentType: contentType, modified: time.Now()}

	return domain.StoredFile{
		ID:          uuid.New().String(),
		Path:        path,
		FullPath:    s.bucket + "/" + path,
		Size:        n,
		ContentType: contentType,
	}, nil
}
