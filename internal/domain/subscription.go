/**
 * @description
 * This file defines the core subscription domain model: the Subscription
 * struct, its enums, and the renewal-date/status rules that run on every
 * create and update.
 */
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Frequency is the billing cadence of a subscription.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// PeriodDays returns the length of one billing period in days.
// The second return value is false for an unrecognized frequency.
func (f Frequency) PeriodDays() (int, bool) {
	switch f {
	case FrequencyDaily:
		return 1, true
	case FrequencyWeekly:
		return 7, true
	case FrequencyMonthly:
		return 30, true
	case FrequencyYearly:
		return 365, true
	default:
		return 0, false
	}
}

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusTrial     Status = "trial"
	StatusExpired   Status = "expired"
)

// ValidStatus reports whether s is one of the recognized statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusActive, StatusCancelled, StatusTrial, StatusExpired:
		return true
	}
	return false
}

// Currency is the ISO code a subscription is billed in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyINR Currency = "INR"
	CurrencyNPR Currency = "NPR"
)

// ValidCurrency reports whether c is one of the supported currencies.
func ValidCurrency(c Currency) bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyINR, CurrencyNPR:
		return true
	}
	return false
}

// Category groups subscriptions for reporting.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryClothing      Category = "clothing"
	CategoryElectronics   Category = "electronics"
	CategoryBooks         Category = "books"
	CategoryFurniture     Category = "furniture"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// ValidCategory reports whether c is one of the supported categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryFood, CategoryClothing, CategoryElectronics, CategoryBooks,
		CategoryFurniture, CategoryEntertainment, CategoryOther:
		return true
	}
	return false
}

// Validation errors surfaced to the caller at create/update time.
var (
	ErrInvalidStartDate   = errors.New("subscription start date cannot be in the future")
	ErrInvalidFrequency   = errors.New("subscription frequency is not recognized")
	ErrInvalidRenewalDate = errors.New("subscription renewal date must be after the start date")
	ErrInvalidName        = errors.New("subscription name must be between 2 and 100 characters")
	ErrInvalidPrice       = errors.New("subscription price must be greater than 0")
	ErrInvalidCurrency    = errors.New("subscription currency is not supported")
	ErrInvalidCategory    = errors.New("subscription category is not recognized")
	ErrInvalidStatus      = errors.New("subscription status is not recognized")
	ErrMissingPayment     = errors.New("subscription payment method is required")
)

// Subscription represents one recurring payment tracked for a user.
type Subscription struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Currency      Currency  `json:"currency"`
	Frequency     Frequency `json:"frequency"`
	Category      Category  `json:"category"`
	PaymentMethod string    `json:"payment_method"`
	Status        Status    `json:"status"`
	StartDate     time.Time `json:"start_date"`
	RenewalDate   time.Time `json:"renewal_date"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ComputeRenewalDate derives the renewal date from the start date and
// billing frequency: start plus one full period.
func ComputeRenewalDate(start time.Time, frequency Frequency) (time.Time, error) {
	days, ok := frequency.PeriodDays()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}
	return start.AddDate(0, 0, days), nil
}

// ComputeStatus forces a subscription whose renewal date has passed to
// expired; any other subscription keeps its current status. Recomputing is
// idempotent.
func ComputeStatus(renewalDate, now time.Time, current Status) Status {
	if renewalDate.Before(now) {
		return StatusExpired
	}
	return current
}

// Normalize validates the subscription, derives a missing renewal date from
// the frequency, and recomputes the status. It must run on every create and
// on every update that touches the start date, frequency or renewal date.
func (s *Subscription) Normalize(now time.Time) error {
	if l := len(s.Name); l < 2 || l > 100 {
		return ErrInvalidName
	}
	if s.Price <= 0 {
		return ErrInvalidPrice
	}
	if s.Currency == "" {
		s.Currency = CurrencyUSD
	}
	if !ValidCurrency(s.Currency) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, s.Currency)
	}
	if !ValidCategory(s.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, s.Category)
	}
	if s.PaymentMethod == "" {
		return ErrMissingPayment
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	if !ValidStatus(s.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s.Status)
	}

	// A start date equal to "now" is valid; strictly future is not.
	if s.StartDate.After(now) {
		return ErrInvalidStartDate
	}

	if s.RenewalDate.IsZero() {
		renewal, err := ComputeRenewalDate(s.StartDate, s.Frequency)
		if err != nil {
			return err
		}
		s.RenewalDate = renewal
	} else if s.Frequency != "" {
		if _, ok := s.Frequency.PeriodDays(); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidFrequency, s.Frequency)
		}
	}

	if !s.RenewalDate.After(s.StartDate) {
		return ErrInvalidRenewalDate
	}

	s.Status = ComputeStatus(s.RenewalDate, now, s.Status)
	return nil
}
