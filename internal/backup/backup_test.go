package backup

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/naija-emoji/apiserver/internal/db/dbtest"
	"github.com/naija-emoji/apiserver/internal/storage"
	"github.com/naija-emoji/apiserver/internal/store"
	"github.com/naija-emoji/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryObjects) EnsureBucket(context.Context) error { return nil }

func (m *memoryObjects) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return io.ErrShortWrite
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryObjects) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func TestExportAndRestore(t *testing.T) {
	ctx := context.Background()
	objects := newMemoryObjects()

	source := store.NewEmojiRepository(dbtest.NewSQLite(t))
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err := source.Create(ctx, types.Emoji{
		Name:         "innocent",
		Char:         "😇",
		Keywords:     types.Keywords{"happy", "holy"},
		Category:     "person",
		DateCreated:  created,
		DateModified: created.Add(time.Hour),
		CreatedBy:    "kemi",
	})
	require.NoError(t, err)

	exporter := NewService(source, objects, nil)
	exporter.now = func() time.Time { return time.Unix(1760000000, 0) }

	key, err := exporter.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "emojis/snapshot-1760000000.json", key)
	assert.Equal(t, "application/json", objects.types[key])

	latest, err := exporter.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, latest)

	target := store.NewEmojiRepository(dbtest.NewSQLite(t))
	restorer := NewService(target, objects, nil)
	count, err := restorer.Restore(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	restored, err := target.List(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "innocent", restored[0].Name)
	assert.Equal(t, "kemi", restored[0].CreatedBy)
	assert.Equal(t, types.Keywords{"happy", "holy"}, restored[0].Keywords)
	assert.True(t, created.Equal(restored[0].DateCreated))
	assert.True(t, created.Add(time.Hour).Equal(restored[0].DateModified))
}

func TestRestoreErrors(t *testing.T) {
	ctx := context.Background()
	objects := newMemoryObjects()
	svc := NewService(store.NewEmojiRepository(dbtest.NewSQLite(t)), objects, nil)

	_, err := svc.Latest(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshots)

	_, err = svc.Restore(ctx, "emojis/missing.json")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	objects.objects["emojis/snapshot-1.json"] = []byte(`{"version":9,"emojis":[]}`)
	_, err = svc.Restore(ctx, "emojis/snapshot-1.json")
	assert.ErrorContains(t, err, "unsupported snapshot version 9")
}

func TestSnapshotKeysSortByTime(t *testing.T) {
	older := SnapshotKey(time.Unix(1700000000, 0))
	newer := SnapshotKey(time.Unix(1760000000, 0))
	assert.Less(t, older, newer)
}
