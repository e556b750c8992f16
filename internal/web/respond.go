package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"focusplan/internal/confirm"
	appLog "focusplan/internal/log"
	"focusplan/internal/model"
	"focusplan/internal/planner"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeErr maps domain errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		appLog.Error("request failed", err)
	}
	writeError(w, status, err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound), errors.Is(err, confirm.ErrUnknownTicket):
		return http.StatusNotFound
	case errors.Is(err, planner.ErrReadOnly):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. Malformed bodies are
// reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &model.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
