package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/pricedata"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// StatusFor maps an analysis error to an HTTP status
// ⭐ SSOT: 에러 → HTTP 상태 매핑은 여기서만
func StatusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrInvalidParameter):
		return http.StatusBadRequest
	case pricedata.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrEmptyInput),
		errors.Is(err, contracts.ErrInsufficientRange),
		errors.Is(err, contracts.ErrNoOverlap),
		errors.Is(err, contracts.ErrInvalidSeries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrSubjectFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
