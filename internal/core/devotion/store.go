// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package devotion

import "context"

// RecordStore is the persistence contract used by the clone pipeline.
type RecordStore interface {
	// ListRecords returns every record of a language in publish order.
	ListRecords(ctx context.Context, lang string) ([]*Record, error)

	// InsertRecords stores a batch atomically and returns the new IDs in input order.
	InsertRecords(ctx context.Context, batch []*Record) ([]int64, error)

	// UpdateRecord applies a partial update. A missing record yields dberr.ErrNotFound.
	UpdateRecord(ctx context.Context, id int64, update RecordUpdate) error
}
