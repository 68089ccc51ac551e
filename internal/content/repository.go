// Package content reads words and storybook pages from the remote content store.
package content

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/toddlingo/internal/translation"
)

//go:generate mockgen -source=repository.go -destination=../mocks/content/mock_repository.go -package=mock_content

// Repository defines the queries the reconciliation and prefetch paths need.
type Repository interface {
	FindRecords(ctx context.Context, query Query) ([]Record, error)
	FindPages(ctx context.Context, bookID int64) ([]Page, error)
	UpdateTranslations(ctx context.Context, collection Collection, id int64, mapping translation.Mapping) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindRecords returns the id and translations of every record matching the query.
func (r *DBRepository) FindRecords(ctx context.Context, query Query) ([]Record, error) {
	schema, err := query.Collection.schema()
	if err != nil {
		return nil, err
	}

	builder := sq.Select("id", "translations", "created_at").From(schema.table)
	if query.Field != "" {
		if !schema.allowsFilter(query.Field) {
			return nil, fmt.Errorf("%s.%s: %w", schema.table, query.Field, ErrUnknownField)
		}
		builder = builder.Where(sq.Eq{query.Field: query.Value})
	}
	if query.Newest {
		builder = builder.OrderBy("created_at DESC")
	}

	statement, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("builder.ToSql() > %w", err)
	}

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, statement, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(%s) > %w", schema.table, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			ID:           row.ID,
			Translations: json.RawMessage(row.Translations),
			CreatedAt:    row.CreatedAt,
		})
	}
	return records, nil
}

// FindPages returns the pages of a book in reading order.
func (r *DBRepository) FindPages(ctx context.Context, bookID int64) ([]Page, error) {
	statement, args, err := sq.Select(
		"id",
		"book_id",
		"page_number",
		"COALESCE(image_url, '') AS image_url",
		"COALESCE(audio_url, '') AS audio_url",
		"translations",
		"created_at",
	).
		From(collections[CollectionBookPages].table).
		Where(sq.Eq{"book_id": bookID}).
		OrderBy("page_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("builder.ToSql() > %w", err)
	}

	var rows []pageRow
	if err := r.db.SelectContext(ctx, &rows, statement, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(book_pages) > %w", err)
	}

	pages := make([]Page, 0, len(rows))
	for _, row := range rows {
		pages = append(pages, Page{
			ID:           row.ID,
			BookID:       row.BookID,
			PageNumber:   row.PageNumber,
			ImageURL:     row.ImageURL,
			AudioURL:     row.AudioURL,
			Translations: json.RawMessage(row.Translations),
			CreatedAt:    row.CreatedAt,
		})
	}
	return pages, nil
}

// UpdateTranslations stores the mapping as single-level JSON.
func (r *DBRepository) UpdateTranslations(ctx context.Context, collection Collection, id int64, mapping translation.Mapping) error {
	schema, err := collection.schema()
	if err != nil {
		return err
	}

	data, err := translation.Encode(mapping)
	if err != nil {
		return fmt.Errorf("translation.Encode() > %w", err)
	}

	statement, args, err := sq.Update(schema.table).
		Set("translations", string(data)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("builder.ToSql() > %w", err)
	}

	result, err := r.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update %s) > %w", schema.table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s id %d: %w", schema.table, id, ErrNotFound)
	}
	return nil
}
