// Package handler implements the HTTP API handlers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/calvinwei/defolio/internal/domain"
)

// writeJSON marshals v as JSON and writes it with the given status code. If
// marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps known domain errors to HTTP status codes, falling
// back to 502 for upstream failures. Error strings from upstream clients can
// embed credentials-adjacent detail, so only the sentinel text is surfaced.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAddress.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAmount.Error())
	case errors.Is(err, domain.ErrSameTokenPair):
		writeError(w, http.StatusBadRequest, domain.ErrSameTokenPair.Error())
	case errors.Is(err, domain.ErrUnsupportedChain):
		writeError(w, http.StatusBadRequest, domain.ErrUnsupportedChain.Error())
	case errors.Is(err, domain.ErrQuoteSuperseded):
		writeError(w, http.StatusConflict, domain.ErrQuoteSuperseded.Error())
	case errors.Is(err, domain.ErrNoRoute):
		writeError(w, http.StatusUnprocessableEntity, domain.ErrNoRoute.Error())
	case errors.Is(err, domain.ErrMissingAPIKey):
		writeError(w, http.StatusServiceUnavailable, domain.ErrMissingAPIKey.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Error())
	default:
		writeError(w, http.StatusBadGateway, "upstream request failed")
	}
}

// queryChain extracts the chain query parameter, falling back to the default
// chain when absent.
func queryChain(r *http.Request, fallback domain.ChainID) domain.ChainID {
	v := r.URL.Query().Get("chain")
	if v == "" {
		return fallback
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return fallback
	}
	return domain.ChainID(id)
}

// queryInt extracts an integer query parameter with a default.
func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
