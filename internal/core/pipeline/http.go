// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pipeline

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/verbum/internal/core/devotion"
	"github.com/taibuivan/verbum/internal/platform/apperr"
	"github.com/taibuivan/verbum/internal/platform/dberr"
	requestutil "github.com/taibuivan/verbum/internal/platform/request"
	"github.com/taibuivan/verbum/internal/platform/respond"
	"github.com/taibuivan/verbum/internal/platform/validate"
	"github.com/taibuivan/verbum/pkg/uuid"
)

// Handler exposes migration runs over HTTP.
type Handler struct {
	launcher *Launcher
	store    RunStore
}

// NewHandler constructs a new pipeline [Handler].
func NewHandler(launcher *Launcher, store RunStore) *Handler {
	return &Handler{launcher: launcher, store: store}
}

// Routes returns a [chi.Router] configured with the migration endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.start)
	router.Get("/{id}", handler.get)

	return router
}

type startRequest struct {
	RunID      string  `json:"run_id"`
	SourceLang string  `json:"source_lang"`
	TargetLang string  `json:"target_lang"`
	Selections []int64 `json:"selections"`
	DryRun     bool    `json:"dry_run"`
}

func (body startRequest) validate() error {
	validator := &validate.Validator{}

	validator.
		LanguageTag("source_lang", body.SourceLang).
		LanguageTag("target_lang", body.TargetLang).
		Custom("target_lang", body.SourceLang != "" && body.SourceLang == body.TargetLang, "Must differ from source_lang").
		Custom("selections", len(body.Selections) > devotion.SlotCount, "At most 3 translations").
		Custom("run_id", body.RunID != "" && !uuid.Valid(body.RunID), "Must be a UUID")

	used := 0
	for _, id := range body.Selections {
		validator.Custom("selections", id < 0, "Translation ids must not be negative")
		if id > 0 {
			used++
		}
	}
	validator.Custom("selections", used == 0, "At least one translation is required")

	return validator.Err()
}

func (body startRequest) toRequest() Request {
	request := Request{
		RunID:      body.RunID,
		SourceLang: body.SourceLang,
		TargetLang: body.TargetLang,
		DryRun:     body.DryRun,
	}
	for i, id := range body.Selections {
		if i < devotion.SlotCount {
			request.Selections[i] = Selection{TranslationID: id}
		}
	}
	return request
}

/*
POST /api/v1/migrations.

Description: Starts a clone run in the background. Progress is polled through
GET /api/v1/migrations/{id}.

Request:
  - source_lang, target_lang: language tags
  - selections: up to 3 translation ids, 0 leaves a slot unused
  - run_id: optional UUID
  - dry_run: bool

Response:
  - 202: Report (phase "pending")
  - 400: validation failure
  - 409: run id already used
*/
func (handler *Handler) start(writer http.ResponseWriter, request *http.Request) {
	var body startRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := body.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.launcher.Start(request.Context(), body.toRequest())
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}

	writer.Header().Set("Location", "/api/v1/migrations/"+report.RunID)
	respond.Accepted(writer, report)
}

/*
GET /api/v1/migrations/{id}.

Response:
  - 200: Report (latest snapshot)
  - 404: unknown or expired run
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	runID := requestutil.Param(request, "id")
	if !uuid.Valid(runID) {
		respond.Error(writer, request, apperr.NotFound("Migration run"))
		return
	}

	report, err := handler.store.Get(request.Context(), runID)
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}

	respond.OK(writer, report)
}

// ToAppError maps pipeline errors onto API errors.
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrRunExists):
		return apperr.Conflict("Run id already used").WithCause(err)
	case dberr.IsNotFound(err):
		return apperr.NotFound("Migration run")
	}
	return err
}
