package firmware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, opts ...Option) *SQLStore {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenSQLStore(filepath.Join(dir, "remap.db"), filepath.Join(dir, "blobs"), testLogger(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func uploadFile(t *testing.T, s *SQLStore, def, name, content string) Firmware {
	t.Helper()
	path := writeFile(t, t.TempDir(), name, content)
	file, err := FileFromPath(path)
	require.NoError(t, err)

	fw, err := s.Upload(context.Background(), def, Upload{File: file, Name: "build " + name, Description: "desc"})
	require.NoError(t, err)
	return fw
}

func TestSQLStore_UploadListFetchDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	content := ":10000000DEADBEEF\n"

	fw := uploadFile(t, s, "corne", "corne.hex", content)

	sum := sha256.Sum256([]byte(content))
	assert.Equal(t, hex.EncodeToString(sum[:]), fw.Hash)
	assert.Equal(t, int64(len(content)), fw.Size)
	assert.Equal(t, "corne", fw.DefinitionID)
	assert.True(t, strings.HasPrefix(fw.Filename, "firmwares/corne/"+fw.ID))
	assert.Equal(t, fw.ID+"-corne.hex", DownloadName(fw.Filename))

	list, err := s.List(ctx, "corne")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fw.ID, list[0].ID)
	assert.Equal(t, fw.Hash, list[0].Hash)
	assert.True(t, fw.CreatedAt.Equal(list[0].CreatedAt))

	rc, err := s.Fetch(ctx, fw.Filename)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	require.NoError(t, s.Delete(ctx, fw))

	list, err = s.List(ctx, "corne")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Fetch(ctx, fw.Filename)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ListIsPerDefinitionInUploadOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first := uploadFile(t, s, "corne", "a.hex", "a")
	uploadFile(t, s, "lily58", "b.hex", "b")
	second := uploadFile(t, s, "corne", "c.hex", "c")

	list, err := s.List(ctx, "corne")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	list, err = s.List(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLStore_WithClock(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	s := openTestStore(t, WithClock(func() time.Time { return at }))

	fw := uploadFile(t, s, "corne", "a.hex", "a")
	assert.True(t, fw.CreatedAt.Equal(at), "CreatedAt = %v, want %v", fw.CreatedAt, at)

	got, err := s.Get(context.Background(), fw.ID)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(at), "stored CreatedAt = %v, want %v", got.CreatedAt, at)
}

func TestSQLStore_Get(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fw := uploadFile(t, s, "corne", "a.hex", "a")

	got, err := s.Get(ctx, fw.ID)
	require.NoError(t, err)
	assert.Equal(t, fw.ID, got.ID)

	got, err = s.Get(ctx, fw.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, fw.ID, got.ID)

	_, err = s.Get(ctx, "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_GetWildcardsAreLiteral(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fw := uploadFile(t, s, "corne", "a.hex", "a")

	for _, id := range []string{"%", "_", fw.ID[:4] + "%", "_" + fw.ID[1:8]} {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "Get(%q)", id)
	}
}

func TestSQLStore_DeleteUnknown(t *testing.T) {
	s := openTestStore(t)

	err := s.Delete(context.Background(), Firmware{ID: "missing"})

	assert.ErrorIs(t, err, ErrNotFound)
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "delete", storeErr.Op)
}

func TestSQLStore_FetchRejectsEscapingNames(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"../outside.hex", "/etc/passwd", ""} {
		_, err := s.Fetch(context.Background(), name)
		assert.Error(t, err, "Fetch(%q)", name)
	}
}

func TestSQLStore_UploadMissingFile(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Upload(context.Background(), "corne", Upload{
		File: File{Name: "gone.hex", Path: filepath.Join(t.TempDir(), "gone.hex")},
		Name: "v1", Description: "d",
	})
	assert.Error(t, err)

	list, err := s.List(context.Background(), "corne")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenSQLStore_ReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	dbPath, blobs := filepath.Join(dir, "remap.db"), filepath.Join(dir, "blobs")

	s, err := OpenSQLStore(dbPath, blobs, testLogger(t))
	require.NoError(t, err)
	fw := uploadFile(t, s, "corne", "a.hex", "a")
	require.NoError(t, s.Close())

	s, err = OpenSQLStore(dbPath, blobs, testLogger(t))
	require.NoError(t, err)
	defer s.Close()

	list, err := s.List(context.Background(), "corne")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fw.ID, list[0].ID)
}
