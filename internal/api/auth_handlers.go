/**
 * @description
 * HTTP handlers for the authentication routes: sign-up, activation,
 * sign-in, sign-out. Handlers parse the request, call the auth service, and
 * write the JSON envelope.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler holds the application services the HTTP layer depends on.
type Handler struct {
	auth  AuthService
	users UserService
	subs  SubscriptionService
}

// NewHandler creates a Handler with the given services.
func NewHandler(auth AuthService, users UserService, subs SubscriptionService) *Handler {
	return &Handler{auth: auth, users: users, subs: subs}
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.auth.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated,
		"User created successfully. Please check your email to activate your account.",
		map[string]any{"token": token, "user": user})
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.auth.Activate(r.Context(), token); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Account activated successfully. You can now sign in.", nil)
}

func (h *Handler) handleResendActivation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.auth.ResendActivation(r.Context(), req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "A new activation link has been sent to your email.", nil)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "User logged in successfully",
		map[string]any{"token": token, "user": user})
}

// Sign-out is stateless: the client discards its token.
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, "Successfully signed out", nil)
}
