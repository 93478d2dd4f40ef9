package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/xavierca1/dealer-leads/internal/usecase"
)

type ErrorResponse struct {
	Code    string                    `json:"code"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the use case error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusInternalServerError
		switch de.Code {
		case usecase.CodeValidation:
			status = http.StatusBadRequest
		case usecase.CodeNotFound:
			status = http.StatusNotFound
		case usecase.CodeConflict:
			status = http.StatusConflict
		case usecase.CodeConfiguration:
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, ErrorResponse{Code: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		// the cause may carry connection details; keep it in the logs
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Code: te.Code, Message: te.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL_ERROR", Message: "internal error"})
}

func writeBadJSON(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: usecase.CodeValidation, Message: "invalid JSON: " + err.Error()})
}

// fail logs collaborator failures before answering; domain rejections are
// expected traffic and are not logged.
func fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if usecase.IsTechnicalError(err) || !usecase.IsDomainError(err) {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeError(w, err)
}
