// Package respond writes JSON responses and maps domain errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/core/monitoring"
	"github.com/kilianp07/evstation/core/ranking"
)

var (
	// ErrBadRequest marks malformed request bodies or parameters.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound marks missing resources.
	ErrNotFound = errors.New("not found")
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidVehicleType),
		errors.Is(err, model.ErrUnknownStation),
		errors.Is(err, model.ErrInvalidStation),
		errors.Is(err, ranking.ErrInvalidState),
		errors.Is(err, capacity.ErrInvalidForecast),
		errors.Is(err, capacity.ErrInvalidCapacity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status chosen by Status. Internal errors are not
// echoed to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
		monitoring.CaptureException(err, map[string]string{"path": r.URL.Path, "request_id": RequestID(r)})
	}
	JSON(w, status, ErrorResponse{Error: msg, RequestID: RequestID(r)})
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
