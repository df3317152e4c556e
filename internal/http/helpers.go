package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rentledger/internal/core"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// maxBodySize bounds request bodies. Receipt uploads carry a data URI,
// so the limit is generous.
const maxBodySize = 4 << 20

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrRoomNotFound),
		errors.Is(err, core.ErrReadingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrReadingExists):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrNegativeMeter),
		errors.Is(err, core.ErrUnknownMeter),
		errors.Is(err, core.ErrEmptyRoomID),
		errors.Is(err, core.ErrEmptyRoomName),
		errors.Is(err, core.ErrEmptyPIN):
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, errorBody{Error: err.Error()})
}

func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// requireMethod rejects other verbs with a 405 and reports whether the
// request may proceed.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// periodFromQuery reads the period query parameter, defaulting to the
// current month.
func periodFromQuery(r *http.Request) (core.Period, error) {
	v := strings.TrimSpace(r.URL.Query().Get("period"))
	if v == "" {
		return core.CurrentPeriod(), nil
	}
	p := core.Period(v)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}
