package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/chess-pairings/repositories"
	"github.com/Dosada05/chess-pairings/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576 // 1MB

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // dst не указатель: ошибка программиста
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func urlParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", fmt.Errorf("missing %s in URL path", name)
	}
	return v, nil
}

func positiveIntFromURL(r *http.Request, name string) (int, error) {
	raw, err := urlParam(r, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s format: %q", name, raw)
	}
	return n, nil
}

// errorResponder writes error envelopes. Internal error details are only exposed in
// development.
type errorResponder struct {
	log         *slog.Logger
	development bool
}

func (e errorResponder) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	e.errorResponseWithDetails(w, r, status, message, "")
}

func (e errorResponder) errorResponseWithDetails(w http.ResponseWriter, r *http.Request, status int, message interface{}, details string) {
	env := jsonResponse{"error": message}
	if e.development && details != "" {
		env["details"] = details
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		e.log.Error("failed to write error response", slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (e errorResponder) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	e.log.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	e.errorResponseWithDetails(w, r, http.StatusInternalServerError, message, err.Error())
}

func (e errorResponder) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	e.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (e errorResponder) failedValidationResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	e.errorResponse(w, r, http.StatusUnprocessableEntity, fields)
}

func (e errorResponder) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	e.errorResponseWithDetails(w, r, http.StatusNotFound, "the requested resource could not be found", err.Error())
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func (e errorResponder) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	var partialErr *services.PartialScheduleError

	switch {
	case errors.As(err, &validationErr):
		e.failedValidationResponse(w, r, validationErr.Fields)
	case errors.Is(err, services.ErrValidationFailed):
		e.badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrNotFound):
		e.notFoundResponse(w, r, err)

	case errors.Is(err, repositories.ErrRoundDuplicate), errors.Is(err, repositories.ErrStandingDuplicate):
		// параллельная генерация того же турнира
		e.errorResponse(w, r, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrExportUnavailable):
		e.errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	case errors.As(err, &partialErr):
		e.log.Error("partial schedule", slog.String("tournament_id", partialErr.TournamentID),
			slog.Int("persisted", partialErr.Persisted), slog.Any("error", partialErr.Err))
		env := jsonResponse{
			"error":           "schedule generation failed; regenerate to obtain a complete schedule",
			"roundsRequested": partialErr.Requested,
			"roundsPersisted": partialErr.Persisted,
		}
		if e.development {
			env["details"] = partialErr.Error()
		}
		if wErr := writeJSON(w, http.StatusInternalServerError, env, nil); wErr != nil {
			e.log.Error("failed to write error response", slog.Any("error", wErr))
		}

	default:
		e.serverErrorResponse(w, r, err)
	}
}
