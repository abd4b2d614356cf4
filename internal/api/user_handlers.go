/**
 * @description
 * HTTP handlers for user management. Authorization goes through the policy
 * table in the app package; handlers only resolve the principal and the
 * target resource owner.
 */
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RoshisRai/Subscription-API/internal/app"
	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := app.Authorize(principal, app.ActionListUsers, ""); err != nil {
		respondServiceError(w, err)
		return
	}

	params := listUsersParamsFromQuery(r)
	page, err := h.users.List(r.Context(), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "Users returned successfully", page)
}

func listUsersParamsFromQuery(r *http.Request) store.ListUsersParams {
	q := r.URL.Query()

	params := store.ListUsersParams{
		Name:      q.Get("name"),
		Email:     q.Get("email"),
		SortField: q.Get("sort"),
		SortAsc:   q.Get("order") == "asc",
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		params.Limit = limit
	}
	if roles := q.Get("role"); roles != "" {
		for _, role := range strings.Split(roles, ",") {
			params.Roles = append(params.Roles, domain.Role(strings.TrimSpace(role)))
		}
	}
	if isActive := q.Get("isActive"); isActive != "" {
		active := isActive == "true"
		params.IsActive = &active
	}
	return params
}

func (h *Handler) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondWithJSON(w, http.StatusOK, "User found", principal)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := app.Authorize(principal, app.ActionGetUser, id); err != nil {
		respondServiceError(w, err)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "User found", user)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := app.Authorize(principal, app.ActionCreateUser, ""); err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Name     string        `json:"name"`
		Email    string        `json:"email"`
		Password string        `json:"password"`
		Roles    []domain.Role `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Create(r.Context(), principal, app.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, "User created successfully", user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := app.Authorize(principal, app.ActionUpdateUser, id); err != nil {
		respondServiceError(w, err)
		return
	}

	var req struct {
		Name  *string       `json:"name"`
		Email *string       `json:"email"`
		Roles []domain.Role `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), principal, id, app.UpdateInput{
		Name:  req.Name,
		Email: req.Email,
		Roles: req.Roles,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "User updated successfully", user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := app.Authorize(principal, app.ActionDeleteUser, id); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, "User deleted successfully", nil)
}
