package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/joakmannn/SocialMed/internal/core/domain"
	"github.com/joakmannn/SocialMed/internal/core/services"
	"github.com/joakmannn/SocialMed/pkg/logging"
)

type AuthHandler struct {
	auth services.IAuthService
}

func NewAuthHandler(auth services.IAuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, token, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - sign up failed", "email", req.Email, "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "auth handler - sign up success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, token, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - sign in failed", "email", req.Email, "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "auth handler - sign in success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	user, token, err := h.auth.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		log.ErrorContext(r.Context(), "auth handler - google sign in failed", "err", err)
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "auth handler - google sign in success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	if err := h.auth.SignOut(r.Context()); err != nil {
		log.ErrorContext(r.Context(), "auth handler - sign out failed", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	var req struct {
		Username  *string        `json:"username"`
		Age       *int           `json:"age"`
		Gender    *domain.Gender `json:"gender"`
		AvatarURL *string        `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.ErrorContext(r.Context(), "auth handler - bad request")
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	patch := domain.ProfilePatch{
		Username:  req.Username,
		Age:       req.Age,
		Gender:    req.Gender,
		AvatarURL: req.AvatarURL,
	}
	if err := h.auth.UpdateProfile(r.Context(), patch); err != nil {
		log.ErrorContext(r.Context(), "auth handler - update profile failed", "err", err)
		writeError(w, err)
		return
	}
	user, err := h.auth.CurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	log.InfoContext(r.Context(), "auth handler - profile updated", "user_id", user.ID)
	writeJSON(w, http.StatusOK, user)
}
