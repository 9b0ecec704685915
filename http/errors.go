package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/yourorg/estate-api/internal/favorites"
	"github.com/yourorg/estate-api/listing"
)

// WriteError sends the JSON error body every endpoint shares.
func WriteError(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	render.Status(req, status)
	body := map[string]any{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	render.JSON(w, req, body)
}

// WriteErr maps err onto a status and error code.
func WriteErr(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, listing.ErrInvalidQuery):
		WriteError(w, req, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, listing.ErrInvalidInquiry):
		WriteError(w, req, http.StatusBadRequest, "invalid_inquiry", err.Error())
	case errors.Is(err, favorites.ErrNoSession):
		WriteError(w, req, http.StatusBadRequest, "session_required", err.Error())
	case errors.Is(err, listing.ErrNotFound):
		WriteError(w, req, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, listing.ErrQuotaExceeded):
		WriteError(w, req, http.StatusTooManyRequests, "quota_exceeded", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		WriteError(w, req, http.StatusServiceUnavailable, "unavailable", "request timed out")
	default:
		zap.L().Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		WriteError(w, req, http.StatusInternalServerError, "internal", "")
	}
}
