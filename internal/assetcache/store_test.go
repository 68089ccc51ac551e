package assetcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", "assets.db")
	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestOpenSQLite(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := OpenSQLite(context.Background(), " ")
		assert.Error(t, err)
	})

	t.Run("reopening keeps entries and migrations", func(t *testing.T) {
		ctx := context.Background()
		store, path := openTestStore(t)
		require.NoError(t, store.Put(ctx, PartitionImage, Entry{Key: "https://cdn.example.com/1.png", Data: []byte("png")}))
		require.NoError(t, store.Close())

		reopened, err := OpenSQLite(ctx, path)
		require.NoError(t, err)
		defer reopened.Close()

		var applied int
		require.NoError(t, reopened.db.GetContext(ctx, &applied, "SELECT COUNT(*) FROM "+migrationTable))
		assert.Equal(t, 1, applied)

		got, err := reopened.Get(ctx, PartitionImage, "https://cdn.example.com/1.png")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []byte("png"), got.Data)
	})
}

func TestSQLiteStore_PutGet(t *testing.T) {
	ctx := context.Background()
	cachedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		putPartition Partition
		puts         []Entry
		partition    Partition
		key          string
		want         *Entry
	}{
		{
			name:         "hit",
			putPartition: PartitionImage,
			puts:         []Entry{{Key: "/books/1/p1.png", Data: []byte{0x89, 0x50}, ContentType: "image/png", CachedAt: cachedAt}},
			partition:    PartitionImage,
			key:          "/books/1/p1.png",
			want:         &Entry{Key: "/books/1/p1.png", Data: []byte{0x89, 0x50}, ContentType: "image/png", CachedAt: cachedAt},
		},
		{
			name:         "last write wins",
			putPartition: PartitionAudio,
			puts:         []Entry{{Key: "a.mp3", Data: []byte("old"), CachedAt: cachedAt}, {Key: "a.mp3", Data: []byte("new"), ContentType: "audio/mpeg", CachedAt: cachedAt}},
			partition:    PartitionAudio,
			key:          "a.mp3",
			want:         &Entry{Key: "a.mp3", Data: []byte("new"), ContentType: "audio/mpeg", CachedAt: cachedAt},
		},
		{
			name:         "partitions are separate",
			putPartition: PartitionImage,
			puts:         []Entry{{Key: "same", Data: []byte("image")}},
			partition:    PartitionAudio,
			key:          "same",
		},
		{
			name:         "keys are not normalized",
			putPartition: PartitionImage,
			puts:         []Entry{{Key: "https://cdn.example.com/a.png", Data: []byte("a")}},
			partition:    PartitionImage,
			key:          "https://cdn.example.com/a.png?v=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := openTestStore(t)
			for _, entry := range tt.puts {
				require.NoError(t, store.Put(ctx, tt.putPartition, entry))
			}

			got, err := store.Get(ctx, tt.partition, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteStore_CountAndClear(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	require.NoError(t, store.Put(ctx, PartitionImage, Entry{Key: "1.png", Data: []byte("1")}))
	require.NoError(t, store.Put(ctx, PartitionImage, Entry{Key: "2.png", Data: []byte("2")}))
	require.NoError(t, store.Put(ctx, PartitionAudio, Entry{Key: "1.mp3", Data: []byte("1")}))

	images, err := store.Count(ctx, PartitionImage)
	require.NoError(t, err)
	assert.Equal(t, 2, images)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Clear(ctx))
		for _, partition := range []Partition{PartitionImage, PartitionAudio} {
			count, err := store.Count(ctx, partition)
			require.NoError(t, err)
			assert.Zero(t, count)
		}
	}
}

func TestSQLiteStore_UnknownPartition(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	_, err := store.Get(ctx, Partition("video"), "a")
	assert.ErrorIs(t, err, ErrUnknownPartition)
	assert.ErrorIs(t, store.Put(ctx, Partition("video"), Entry{Key: "a"}), ErrUnknownPartition)
}

func TestParsePartition(t *testing.T) {
	got, err := ParsePartition("audio")
	require.NoError(t, err)
	assert.Equal(t, PartitionAudio, got)

	_, err = ParsePartition("video")
	assert.ErrorIs(t, err, ErrUnknownPartition)
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "up and down",
			content: "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n",
			want:    "\nCREATE TABLE a (id INTEGER);\n",
		},
		{
			name:    "up only",
			content: "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n",
			want:    "\nCREATE TABLE a (id INTEGER);\n",
		},
		{
			name:    "no markers",
			content: "CREATE TABLE a (id INTEGER);",
			want:    "CREATE TABLE a (id INTEGER);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUpMigration(tt.content))
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := OpenStore(ctx, filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &SQLiteStore{}, store)

	// a regular file where the parent directory should be
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	store, err = OpenStore(ctx, filepath.Join(blocker, "assets.db"))
	assert.Error(t, err)
	assert.Equal(t, NopStore{}, store)
}

func TestNopStore(t *testing.T) {
	ctx := context.Background()
	var store Store = NopStore{}

	require.NoError(t, store.Put(ctx, PartitionImage, Entry{Key: "a", Data: []byte("a")}))
	got, err := store.Get(ctx, PartitionImage, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, store.Clear(ctx))
	assert.NoError(t, store.Close())
}
