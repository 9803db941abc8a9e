// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/verbum/internal/platform/apperr"
	"github.com/taibuivan/verbum/internal/platform/validate"
)

// maxBodyBytes caps JSON bodies; the largest payload is a passage to strip.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)

	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Query retrieves a trimmed query-string value.
func Query(request *http.Request, name string) string {
	return strings.TrimSpace(request.URL.Query().Get(name))
}

/*
QueryInt64 parses a required positive integer query parameter.

Returns:
  - int64: parsed value
  - error: apperr validation error naming the parameter
*/
func QueryInt64(request *http.Request, name string) (int64, error) {
	raw := Query(request, name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   name,
			Message: "Must be a positive integer",
		})
	}
	return value, nil
}

// QueryBool parses an optional boolean query parameter, falling back to def.
func QueryBool(request *http.Request, name string, def bool) bool {
	value, err := strconv.ParseBool(Query(request, name))
	if err != nil {
		return def
	}
	return value
}
