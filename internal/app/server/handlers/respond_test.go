package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict},
		{"validation", &domain.ValidationError{Field: "age", Reason: "too low"}, http.StatusBadRequest},
		{"self send", &domain.SendError{Reason: "invalid receiver", Err: domain.ErrSelfConversation}, http.StatusBadRequest},
		{"empty body send", &domain.SendError{Reason: "empty message body"}, http.StatusBadRequest},
		{"store send failure", &domain.SendError{Reason: "rejected by store", Err: errors.New("down")}, http.StatusBadGateway},
		{"remote unavailable", domain.ErrRemoteUnavailable, http.StatusBadGateway},
		{"invalid user id", domain.ErrInvalidUserID, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
