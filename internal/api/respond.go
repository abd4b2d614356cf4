/**
 * @description
 * JSON response helpers and the mapping from service errors to HTTP status
 * codes. Every response uses the {success, message, data} envelope.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoshisRai/Subscription-API/internal/app"
	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, message string, data any) {
	response, err := json.Marshal(envelope{Success: true, Message: message, Data: data})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	response, _ := json.Marshal(envelope{Success: false, Message: message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondServiceError translates a service-layer error into an HTTP
// response.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSubscriptionNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrForbidden),
		errors.Is(err, app.ErrAdminRoleRequired),
		errors.Is(err, app.ErrAccountInactive):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrBadCredentials):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, app.ErrActivationInvalid),
		errors.Is(err, app.ErrActivationExpired),
		errors.Is(err, domain.ErrInvalidStartDate),
		errors.Is(err, domain.ErrInvalidFrequency),
		errors.Is(err, domain.ErrInvalidRenewalDate),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrMissingPayment),
		errors.Is(err, domain.ErrInvalidUserName),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidRole):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
