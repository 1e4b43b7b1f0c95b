package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JankoLoL/Get-a-pic/internal/img"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
	"github.com/JankoLoL/Get-a-pic/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service and repository errors onto HTTP statuses.
// Anything unmapped is a 500 with a generic body; the detail goes to the log,
// not the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrImageNotFound),
		errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrLinkNotAllowed),
		errors.Is(err, service.ErrOriginalNotAllowed),
		errors.Is(err, service.ErrThumbnailNotVisible):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidExpiry),
		errors.Is(err, service.ErrUnsupportedExtension),
		errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAllDerivationsFailed),
		errors.Is(err, img.ErrUnsupportedFormat),
		errors.Is(err, img.ErrDecode):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
