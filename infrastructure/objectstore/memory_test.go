package objectstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UploadAndList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("user-files")

	f, err := s.Upload(ctx, "u1/1-a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "u1/1-a.txt", f.Path)
	assert.Equal(t, "user-files/u1/1-a.txt", f.FullPath)
	assert.Equal(t, int64(5), f.Size)

	_, err = s.Upload(ctx, "u1/nested/b.txt", strings.NewReader("abc"), 3, "text/plain")
	require.NoError(t, err)
	_, err = s.Upload(ctx, "u2/c.txt", strings.NewReader("zz"), 2, "text/plain")
	require.NoError(t, err)

	objs, err := s.List(ctx, "u1/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "1-a.txt", objs[0].Name)
	assert.Equal(t, int64(5), objs[0].Size)
	assert.Equal(t, "nested/", objs[1].Name)
	assert.Zero(t, objs[1].Size)

	empty, err := s.List(ctx, "nobody/")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_UploadErrors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("user-files")

	_, err := s.Upload(ctx, "u1/a", strings.NewReader("abc"), 10, "text/plain")
	assert.Error(t, err)

	_, err = s.Upload(ctx, "u1/a", strings.NewReader("abc"), 3, "text/plain")
	require.NoError(t, err)
	_, err = s.Upload(ctx, "u1/a", strings.NewReader("abc"), 3, "text/plain")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.List(cancelled, "u1/")
	assert.ErrorIs(t, err, context.Canceled)
}
