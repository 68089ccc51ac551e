package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownField      = errors.New("unknown filter field")
)

// Collection names a table of records that carry a translations payload.
type Collection string

const (
	CollectionWords     Collection = "words"
	CollectionBooks     Collection = "books"
	CollectionBookPages Collection = "book_pages"
)

type collectionSchema struct {
	table   string
	filters []string
}

var collections = map[Collection]collectionSchema{
	CollectionWords: {
		table:   "words",
		filters: []string{"category", "level", "word"},
	},
	CollectionBooks: {
		table:   "books",
		filters: []string{"title", "level"},
	},
	CollectionBookPages: {
		table:   "book_pages",
		filters: []string{"book_id", "page_number"},
	},
}

// AllCollections returns every collection known to the repository.
func AllCollections() []Collection {
	return []Collection{CollectionWords, CollectionBooks, CollectionBookPages}
}

// ParseCollection validates a user supplied collection name.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if _, ok := collections[c]; !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownCollection)
	}
	return c, nil
}

func (c Collection) schema() (collectionSchema, error) {
	s, ok := collections[c]
	if !ok {
		return collectionSchema{}, fmt.Errorf("%q: %w", string(c), ErrUnknownCollection)
	}
	return s, nil
}

func (s collectionSchema) allowsFilter(field string) bool {
	for _, f := range s.filters {
		if f == field {
			return true
		}
	}
	return false
}

// Record is the part of a word or page the language reconciliation needs.
type Record struct {
	ID           int64
	Translations json.RawMessage
	CreatedAt    time.Time
}

// Page is a single storybook page with its media.
type Page struct {
	ID           int64
	BookID       int64
	PageNumber   int
	ImageURL     string
	AudioURL     string
	Translations json.RawMessage
	CreatedAt    time.Time
}

// Query selects records from a collection.
// Field and Value form an optional equality filter; Newest orders by created_at descending.
type Query struct {
	Collection Collection
	Field      string
	Value      any
	Newest     bool
}

type recordRow struct {
	ID           int64     `db:"id"`
	Translations []byte    `db:"translations"`
	CreatedAt    time.Time `db:"created_at"`
}

type pageRow struct {
	ID           int64     `db:"id"`
	BookID       int64     `db:"book_id"`
	PageNumber   int       `db:"page_number"`
	ImageURL     string    `db:"image_url"`
	AudioURL     string    `db:"audio_url"`
	Translations []byte    `db:"translations"`
	CreatedAt    time.Time `db:"created_at"`
}
