package assetcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/at-ishikawa/toddlingo/internal/assetcache/migrations"
)

// Partition separates image and audio entries.
type Partition string

const (
	PartitionImage Partition = "image"
	PartitionAudio Partition = "audio"
)

var partitionTables = map[Partition]string{
	PartitionImage: "image_assets",
	PartitionAudio: "audio_assets",
}

var ErrUnknownPartition = errors.New("unknown partition")

func ParsePartition(name string) (Partition, error) {
	p := Partition(name)
	if _, ok := partitionTables[p]; !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownPartition)
	}
	return p, nil
}

func (p Partition) table() (string, error) {
	table, ok := partitionTables[p]
	if !ok {
		return "", fmt.Errorf("%q: %w", string(p), ErrUnknownPartition)
	}
	return table, nil
}

// Entry is one cached asset. Key is the exact source URL.
type Entry struct {
	Key         string
	Data        []byte
	ContentType string
	CachedAt    time.Time
}

//go:generate mockgen -source=store.go -destination=../mocks/assetcache/mock_store.go -package=mock_assetcache

// Store persists cache entries. Get returns nil, nil when the key is absent.
type Store interface {
	Put(ctx context.Context, partition Partition, entry Entry) error
	Get(ctx context.Context, partition Partition, key string) (*Entry, error)
	Count(ctx context.Context, partition Partition) (int, error)
	Clear(ctx context.Context) error
	Close() error
}

// SQLiteStore keeps both partitions in a single SQLite file.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens or creates the store at path. It is meant to be called once at startup.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll > %w", err)
	}

	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	// one writer is all SQLite supports; a single connection avoids SQLITE_BUSY between our own goroutines
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.PingContext() > %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applyMigrations() > %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenStore opens the SQLite store at path. On failure it returns a NopStore together
// with the error, so the caller can report it once and carry on without caching.
func OpenStore(ctx context.Context, path string) (Store, error) {
	store, err := OpenSQLite(ctx, path)
	if err != nil {
		return NopStore{}, err
	}
	return store, nil
}

// Put inserts the entry or overwrites an existing one with the same key.
func (s *SQLiteStore) Put(ctx context.Context, partition Partition, entry Entry) error {
	table, err := partition.table()
	if err != nil {
		return err
	}
	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+table+` (url, data, content_type, size, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			data = excluded.data,
			content_type = excluded.content_type,
			size = excluded.size,
			cached_at = excluded.cached_at`,
		entry.Key, entry.Data, entry.ContentType, len(entry.Data), cachedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("db.ExecContext(upsert %s) > %w", table, err)
	}
	return nil
}

type entryRow struct {
	URL         string `db:"url"`
	Data        []byte `db:"data"`
	ContentType string `db:"content_type"`
	CachedAt    int64  `db:"cached_at"`
}

// Get returns the entry stored under the exact key, or nil if there is none.
func (s *SQLiteStore) Get(ctx context.Context, partition Partition, key string) (*Entry, error) {
	table, err := partition.table()
	if err != nil {
		return nil, err
	}

	var row entryRow
	err = s.db.GetContext(ctx, &row, "SELECT url, data, content_type, cached_at FROM "+table+" WHERE url = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(%s) > %w", table, err)
	}
	return &Entry{
		Key:         row.URL,
		Data:        row.Data,
		ContentType: row.ContentType,
		CachedAt:    time.UnixMilli(row.CachedAt).UTC(),
	}, nil
}

func (s *SQLiteStore) Count(ctx context.Context, partition Partition) (int, error) {
	table, err := partition.table()
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("db.GetContext(count %s) > %w", table, err)
	}
	return count, nil
}

// Clear deletes both partitions in one transaction.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	for _, table := range []string{partitionTables[PartitionImage], partitionTables[PartitionAudio]} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("tx.ExecContext(delete %s) > %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NopStore caches nothing. It backs the cache when the SQLite store could not be opened.
type NopStore struct{}

func (NopStore) Put(context.Context, Partition, Entry) error { return nil }

func (NopStore) Get(context.Context, Partition, string) (*Entry, error) { return nil, nil }

func (NopStore) Count(context.Context, Partition) (int, error) { return 0, nil }

func (NopStore) Clear(context.Context) error { return nil }

func (NopStore) Close() error { return nil }
