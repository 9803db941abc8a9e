// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/verbum/internal/platform/apperr"
)

// ErrNotFound is returned when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: not found")

// Wrap inspects a database error and classifies it.
//
// Missing rows become [ErrNotFound] so that stores can report "no match" without
// leaking pgx types. Everything else is wrapped with the action name and kept
// as the cause of an internal [apperr.AppError].
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return apperr.Internal(fmt.Errorf("%s: sqlstate %s: %w", action, pgError.Code, err))
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsNotFound reports whether err signals a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
