package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/matlayer/pkg/errors"
)

// MaxBodySize bounds request bodies read by DecodeJSON.
const MaxBodySize = 1 << 20

// ErrorBody is the JSON shape of a failed request.
type ErrorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err with the status for its code.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), ErrorBody{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case "":
		if err == nil {
			return http.StatusOK
		}
		return http.StatusInternalServerError
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidIndex, errors.ErrCodeInvalidKind, errors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoActiveContext, errors.ErrCodeNameCollision:
		return http.StatusConflict
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// DecodeJSON decodes the request body into v. An empty body is not an error.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
