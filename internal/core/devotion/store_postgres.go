// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devotion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/verbum/internal/platform/database/schema"
	"github.com/taibuivan/verbum/internal/platform/dberr"
)

// PostgresRepository implements [RecordStore] on devotion.record.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a fully wired postgres implementation.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
ListRecords retrieves every record of a language.

Parameters:
  - ctx: context.Context
  - lang: string (language code, e.g. "sk")

Returns:
  - []*Record: ordered by publish date, then id
  - error: wrapped database failures
*/
func (repository *PostgresRepository) ListRecords(ctx context.Context, lang string) ([]*Record, error) {
	table := schema.DevotionRecord
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC, %s ASC`,
		strings.Join(table.Columns(), ", "), table.CreatedAt, table.UpdatedAt,
		table.Table, table.Lang, table.PublishDate, table.ID)

	rows, err := repository.pool.Query(ctx, query, lang)
	if err != nil {
		return nil, dberr.Wrap(err, "list_records")
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Record, error) {
		record := &Record{}
		err := row.Scan(
			&record.ID, &record.Lang, &record.PublishDate, &record.Title, &record.Body, &record.Citation,
			&record.Slots[0].Text, &record.Slots[0].Translation,
			&record.Slots[1].Text, &record.Slots[1].Translation,
			&record.Slots[2].Text, &record.Slots[2].Translation,
			&record.AudioURL, &record.AudioTitle, &record.AudioSeconds, &record.ExternalRef,
			&record.CreatedAt, &record.UpdatedAt,
		)
		return record, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_records")
	}

	return records, nil
}

/*
InsertRecords stores a batch inside one transaction.

Description: Every insert is queued on a [pgx.Batch] so the whole batch costs a
single round-trip. Either every row is stored or none is.

Returns:
  - []int64: new identifiers, aligned with the batch order
  - error: wrapped database failures
*/
func (repository *PostgresRepository) InsertRecords(ctx context.Context, records []*Record) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	table := schema.DevotionRecord
	columns := table.WritableColumns()
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		table.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), table.ID)

	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_insert_records")
	}
	defer transaction.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(query,
			record.Lang, record.PublishDate, record.Title, record.Body, record.Citation,
			record.Slots[0].Text, record.Slots[0].Translation,
			record.Slots[1].Text, record.Slots[1].Translation,
			record.Slots[2].Text, record.Slots[2].Translation,
			record.AudioURL, record.AudioTitle, record.AudioSeconds, record.ExternalRef,
		)
	}

	results := transaction.SendBatch(ctx, batch)
	ids := make([]int64, len(records))
	for i := range records {
		if err := results.QueryRow().Scan(&ids[i]); err != nil {
			results.Close()
			return nil, dberr.Wrap(err, fmt.Sprintf("insert_record_%d", i))
		}
	}
	if err := results.Close(); err != nil {
		return nil, dberr.Wrap(err, "close_insert_batch")
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_insert_records")
	}

	return ids, nil
}

/*
UpdateRecord applies a partial update.

Description: Builds a PATCH-style SET list from the non-nil fields of the
update. Slots are written as a group so a reader never sees a half-filled record.

Returns:
  - error: dberr.ErrNotFound when no row has the id
*/
func (repository *PostgresRepository) UpdateRecord(ctx context.Context, id int64, update RecordUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	table := schema.DevotionRecord

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", table.Table, table.UpdatedAt))

	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", column, len(args)))
	}

	if update.Title != nil {
		set(table.Title, *update.Title)
	}

	if update.Slots != nil {
		for i, slot := range update.Slots {
			set(table.Scripture[i], slot.Text)
			set(table.ScriptureTr[i], slot.Translation)
		}
	}

	args = append(args, id)
	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d", table.ID, len(args)))

	tag, err := repository.pool.Exec(ctx, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update_record")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return nil
}
