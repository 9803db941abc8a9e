// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds column-name definitions for tables queried with
// dynamically assembled SQL.
package schema

import "github.com/taibuivan/verbum/internal/platform/constants"

// DevotionRecordTable represents the 'devotion.record' table
type DevotionRecordTable struct {
	Table        string
	ID           string
	Lang         string
	PublishDate  string
	Title        string
	Body         string
	Citation     string
	Scripture    [3]string
	ScriptureTr  [3]string
	AudioURL     string
	AudioTitle   string
	AudioSeconds string
	ExternalRef  string
	CreatedAt    string
	UpdatedAt    string
}

// DevotionRecord is the schema definition for devotion.record
var DevotionRecord = DevotionRecordTable{
	Table:        constants.SchemaDevotion + ".record",
	ID:           "id",
	Lang:         "lang",
	PublishDate:  "publishdate",
	Title:        "title",
	Body:         "body",
	Citation:     "citation",
	Scripture:    [3]string{"scripture1", "scripture2", "scripture3"},
	ScriptureTr:  [3]string{"scripture1translation", "scripture2translation", "scripture3translation"},
	AudioURL:     "audiourl",
	AudioTitle:   "audiotitle",
	AudioSeconds: "audioseconds",
	ExternalRef:  "externalref",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns lists the id and writable columns in scan order. Timestamps are selected separately.
func (t DevotionRecordTable) Columns() []string {
	return append([]string{t.ID}, t.WritableColumns()...)
}

// WritableColumns lists the columns an insert supplies, in [Columns] order minus id and timestamps.
func (t DevotionRecordTable) WritableColumns() []string {
	return []string{
		t.Lang, t.PublishDate, t.Title, t.Body, t.Citation,
		t.Scripture[0], t.ScriptureTr[0],
		t.Scripture[1], t.ScriptureTr[1],
		t.Scripture[2], t.ScriptureTr[2],
		t.AudioURL, t.AudioTitle, t.AudioSeconds, t.ExternalRef,
	}
}
