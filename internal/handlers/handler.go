package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/handlers/response"
	"gitlab.com/codeprep.net/internal/static/errs"
)

const maxBodyBytes = 1 << 20

func ResponseWithJson(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func ResponseError(w http.ResponseWriter, message string, code int) {
	response.WriteError(w, response.ErrorMessage{
		Message:    message,
		StatusCode: code,
	})
}

// ResponseData answers with the success envelope around data.
func ResponseData(w http.ResponseWriter, statusCode int, data interface{}) {
	ResponseWithJson(w, statusCode, response.Envelope{Success: true, Data: data})
}

// ParsePage reads the limit and offset query parameters.
func ParsePage(r *http.Request) (domain.Page, error) {
	var page domain.Page
	q := r.URL.Query()
	for name, dst := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.Page{}, fmt.Errorf("%w: %s must be a non-negative integer", errs.ErrInvalidArgument, name)
		}
		*dst = n
	}
	return page, nil
}

// DecodeJSON reads a bounded JSON body into dst and rejects unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// StatusFor classifies a service error for the HTTP boundary.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidCode),
		errors.Is(err, errs.ErrUnsupportedLanguage),
		errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.InvalidCredentials),
		errors.Is(err, errs.Unauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.Forbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.UserNameTaken):
		return http.StatusConflict
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError logs err and answers with its status. Server errors
// are not echoed to the client.
func WriteServiceError(w http.ResponseWriter, logger primary.Logger, msg string, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error(msg, "error", err)
		ResponseError(w, "internal server error", code)
		return
	}
	logger.Debug(msg, "error", err, "status", code)
	ResponseError(w, err.Error(), code)
}
