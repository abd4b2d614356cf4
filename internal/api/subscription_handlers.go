/**
 * @description
 * HTTP handlers for subscription management. Ownership-gated actions fetch
 * the subscription first to learn its owner, then consult the policy table.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RoshisRai/Subscription-API/internal/app"
)

func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := app.Authorize(principal, app.ActionListSubscriptions, ""); err != nil {
		respondServiceError(w, err)
		return
	}

	subs, err := h.subs.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Subscriptions returned successfully", subs)
}

func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var input app.SubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.subs.Create(r.Context(), principal.ID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, "Subscription created successfully", sub)
}

func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := h.subs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := app.Authorize(principal, app.ActionGetSubscription, sub.UserID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Subscription found", sub)
}

func (h *Handler) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := app.Authorize(principal, app.ActionUpdateSubscription, sub.UserID); err != nil {
		respondServiceError(w, err)
		return
	}

	var input app.SubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.subs.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Subscription updated successfully", updated)
}

func (h *Handler) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := app.Authorize(principal, app.ActionCancelSubscription, sub.UserID); err != nil {
		respondServiceError(w, err)
		return
	}

	cancelled, err := h.subs.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Subscription cancelled successfully", cancelled)
}

func (h *Handler) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	sub, err := h.subs.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := app.Authorize(principal, app.ActionDeleteSubscription, sub.UserID); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.subs.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Subscription deleted successfully", nil)
}

func (h *Handler) handleListUserSubscriptions(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID := chi.URLParam(r, "id")
	if err := app.Authorize(principal, app.ActionListUserSubscriptions, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	subs, err := h.subs.ListByUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Subscriptions returned successfully", subs)
}

func (h *Handler) handleUpcomingRenewals(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	subs, err := h.subs.UpcomingRenewals(r.Context(), principal.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Upcoming renewals returned successfully", subs)
}
