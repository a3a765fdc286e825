package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes so handlers stay thin.
func statusFor(err error) int {
	var vErr *domain.ValidationError
	var sErr *domain.SendError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &sErr):
		// A SendError with nothing wrapped is bad input (empty body);
		// only store rejections carry an upstream cause.
		if sErr.Err == nil || errors.Is(err, domain.ErrSelfConversation) {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidUserID), errors.Is(err, domain.ErrSelfConversation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}
