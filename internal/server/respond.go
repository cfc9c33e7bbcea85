package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/jsontree/pkg/errors"
	"github.com/matzehuels/jsontree/pkg/session"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code        errors.Code `json:"code"`
	Message     string      `json:"message"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and an error body. Errors without a code
// are reported as INTERNAL_ERROR.
func writeError(w http.ResponseWriter, err error) {
	err = apiError(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	detail := errorDetail{Code: code, Message: errors.UserMessage(err)}
	var miss *errors.NoMatchError
	if stderrors.As(err, &miss) {
		// The cause only repeats the query; the suggestions carry the detail.
		detail.Message = "No match found."
		detail.Suggestions = miss.Suggestions
	}
	writeJSON(w, errors.HTTPStatus(code), errorBody{Error: detail})
}

// apiError translates sentinels from lower layers into coded errors.
func apiError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case stderrors.Is(err, session.ErrNotFound):
		return errors.Wrap(errors.ErrCodeSessionNotFound, err, "unknown session")
	case stderrors.Is(err, session.ErrExpired):
		return errors.Wrap(errors.ErrCodeSessionExpired, err, "session has expired")
	case stderrors.As(err, &maxErr):
		return errors.New(errors.ErrCodeTooLarge, "request body too large (max %d bytes)", maxErr.Limit)
	}
	return err
}

// decode reads a JSON request body into v, bounded by limit bytes.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
