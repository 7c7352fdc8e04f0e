package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/nur12play/Analiticpplatform/internal/app"
	"github.com/nur12play/Analiticpplatform/internal/domain/query"
	"github.com/nur12play/Analiticpplatform/pkg/logger"
	"github.com/nur12play/Analiticpplatform/pkg/metrics"
)

// Error codes carried in errorResponse.Code beyond the validation kinds.
const (
	codeNotFound = "not_found"
	codeInternal = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg, details string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg, Details: details})
}

// respondError maps validation errors to 400, no data to 404 and anything
// else to 500 with the underlying error as details.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if kind, ok := query.KindOf(err); ok {
		metrics.RecordValidationFailure(string(kind))
		writeError(w, http.StatusBadRequest, string(kind), err.Error(), "")
		return
	}
	if errors.Is(err, service.ErrNoData) {
		writeError(w, http.StatusNotFound, codeNotFound, err.Error(), "")
		return
	}

	logger.Get().Error(r.Context(), "request failed",
		logger.String("path", r.URL.Path),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error", err.Error())
}
