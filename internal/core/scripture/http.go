// Copyright (c) 2026 Verbum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scripture

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/verbum/internal/platform/apperr"
	"github.com/taibuivan/verbum/internal/platform/dberr"
	requestutil "github.com/taibuivan/verbum/internal/platform/request"
	"github.com/taibuivan/verbum/internal/platform/respond"
	"github.com/taibuivan/verbum/internal/platform/validate"
)

// maxStripText bounds the text accepted by the strip preview.
const maxStripText = 100_000

// Handler implements the HTTP layer for scripture previews.
type Handler struct {
	service *Service
}

// NewHandler constructs a new scripture [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the scripture endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/translations", handler.listTranslations)
	router.Get("/resolve", handler.resolve)
	router.Post("/strip", handler.strip)

	return router
}

/*
GET /api/v1/scripture/translations?locale=sk.

Response:
  - 200: []Translation
  - 400: locale missing or malformed
*/
func (handler *Handler) listTranslations(writer http.ResponseWriter, request *http.Request) {
	locale := requestutil.Query(request, "locale")

	if err := (&validate.Validator{}).LanguageTag("locale", locale).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	translations, err := handler.service.ListTranslations(request.Context(), locale)
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}

	respond.OK(writer, translations)
}

/*
GET /api/v1/scripture/resolve?citation=Mt+4,+12-17&translation=3&numbers=true.

Description: Parses the citation, matches the book in the translation's locale
and returns the passage. Used by the Bible-insert dialog of the editor.

Response:
  - 200: Resolution
  - 404: translation not found
  - 422: citation malformed, unknown book, no verses or empty selection
*/
func (handler *Handler) resolve(writer http.ResponseWriter, request *http.Request) {
	citation := requestutil.Query(request, "citation")
	if err := (&validate.Validator{}).Required("citation", citation).MaxLen("citation", citation, 200).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	translationID, err := requestutil.QueryInt64(request, "translation")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	opts := FormatOptions{VerseNumbers: requestutil.QueryBool(request, "numbers", true)}

	resolution, err := handler.service.ResolveCitation(request.Context(), citation, translationID, opts)
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}

	respond.OK(writer, resolution)
}

type stripRequest struct {
	Text string `json:"text"`
}

/*
POST /api/v1/scripture/strip.

Request:
  - text: string (assembled passage text)

Response:
  - 200: {"text": "..."}
*/
func (handler *Handler) strip(writer http.ResponseWriter, request *http.Request) {
	var body stripRequest
	if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).MaxLen("text", body.Text, maxStripText).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stripRequest{Text: StripVerseNumbers(body.Text)})
}

// ToAppError maps scripture domain errors onto API errors.
func ToAppError(err error) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return apperr.Unprocessable(parseErr.Code(), parseErr.Error()).WithCause(err)
	}

	var resolutionErr *ResolutionError
	if errors.As(err, &resolutionErr) {
		return apperr.Unprocessable(resolutionErr.Code(), resolutionErr.Error()).WithCause(err)
	}

	if dberr.IsNotFound(err) {
		return apperr.NotFound("Translation")
	}

	return err
}
