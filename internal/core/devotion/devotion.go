// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package devotion models the daily devotional records that the clone pipeline
// copies between languages.
package devotion

import "time"

// SlotCount is the number of parallel scripture fields a record carries.
const SlotCount = 3

// ScriptureSlot is one resolved passage attached to a record.
type ScriptureSlot struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// IsEmpty reports whether nothing has been written to the slot.
func (slot ScriptureSlot) IsEmpty() bool {
	return slot.Text == "" && slot.Translation == ""
}

// Record is a single devotional entry in one language.
type Record struct {
	ID          int64     `json:"id"`
	Lang        string    `json:"lang"`
	PublishDate time.Time `json:"publish_date"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`

	// Citation is the editor-entered scripture reference, e.g. "Mt 4, 12-17. 23-25".
	Citation string `json:"citation"`

	Slots [SlotCount]ScriptureSlot `json:"slots"`

	// Audio and external metadata belong to the source language only.
	AudioURL     string `json:"audio_url,omitempty"`
	AudioTitle   string `json:"audio_title,omitempty"`
	AudioSeconds int    `json:"audio_seconds,omitempty"`
	ExternalRef  string `json:"external_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CloneFor returns a copy of the record for the target language.
//
// The clone has no ID, blank scripture slots and reset audio/meta fields. Title,
// body, citation and publish date are carried over unchanged.
func (record *Record) CloneFor(lang string) *Record {
	return &Record{
		Lang:        lang,
		PublishDate: record.PublishDate,
		Title:       record.Title,
		Body:        record.Body,
		Citation:    record.Citation,
	}
}

// RecordUpdate is a partial update; nil fields are left untouched.
type RecordUpdate struct {
	Title *string
	Slots *[SlotCount]ScriptureSlot
}

// IsEmpty reports whether the update would change nothing.
func (update RecordUpdate) IsEmpty() bool {
	return update.Title == nil && update.Slots == nil
}
