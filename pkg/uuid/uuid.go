// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides the time-ordered identifiers used for clone runs and
request tracing.

Version 7 values sort by creation time, so run snapshots listed by key come
out in start order.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// entropy failure is an unrecoverable system-level error
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// # Validation

// Valid reports whether s is a canonical UUID string of any version.
func Valid(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.String() == s
}
