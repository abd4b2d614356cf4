package domain

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validSubscription() Subscription {
	return Subscription{
		ID:            "sub-1",
		Name:          "Netflix",
		Price:         15.99,
		Currency:      CurrencyUSD,
		Frequency:     FrequencyMonthly,
		Category:      CategoryEntertainment,
		PaymentMethod: "credit card",
		StartDate:     date(2024, 1, 1),
		UserID:        "user-1",
	}
}

func TestComputeRenewalDate_AllFrequencies(t *testing.T) {
	start := date(2024, 1, 1)

	tests := []struct {
		frequency Frequency
		want      time.Time
	}{
		{FrequencyDaily, date(2024, 1, 2)},
		{FrequencyWeekly, date(2024, 1, 8)},
		{FrequencyMonthly, date(2024, 1, 31)},
		{FrequencyYearly, date(2024, 12, 31)},
	}

	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			got, err := ComputeRenewalDate(start, tt.frequency)
			if err != nil {
				t.Fatalf("ComputeRenewalDate returned error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("expected renewal date %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComputeRenewalDate_UnknownFrequency(t *testing.T) {
	_, err := ComputeRenewalDate(date(2024, 1, 1), Frequency("fortnightly"))
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
}

func TestComputeStatus_ForcesExpiredWhenRenewalPassed(t *testing.T) {
	now := date(2024, 2, 15)
	renewal := date(2024, 2, 1)

	for _, current := range []Status{StatusPending, StatusActive, StatusCancelled, StatusTrial, StatusExpired} {
		if got := ComputeStatus(renewal, now, current); got != StatusExpired {
			t.Fatalf("expected expired for current status %q, got %q", current, got)
		}
	}

	// Idempotent: recomputing an already-expired result changes nothing.
	first := ComputeStatus(renewal, now, StatusActive)
	second := ComputeStatus(renewal, now, first)
	if first != second {
		t.Fatalf("recompute not idempotent: %q then %q", first, second)
	}
}

func TestComputeStatus_KeepsCurrentWhenRenewalFuture(t *testing.T) {
	now := date(2024, 1, 15)
	renewal := date(2024, 1, 31)

	for _, current := range []Status{StatusPending, StatusActive, StatusTrial, StatusCancelled} {
		if got := ComputeStatus(renewal, now, current); got != current {
			t.Fatalf("expected status %q preserved, got %q", current, got)
		}
	}
}

func TestNormalize_DerivesRenewalDate(t *testing.T) {
	sub := validSubscription()
	now := date(2024, 1, 15)

	if err := sub.Normalize(now); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if want := date(2024, 1, 31); !sub.RenewalDate.Equal(want) {
		t.Fatalf("expected derived renewal date %v, got %v", want, sub.RenewalDate)
	}
	if sub.Status != StatusActive {
		t.Fatalf("expected active status before renewal, got %q", sub.Status)
	}
}

func TestNormalize_ExpiresWhenRenewalPassed(t *testing.T) {
	sub := validSubscription()
	now := date(2024, 3, 1) // past the derived renewal of 2024-01-31

	if err := sub.Normalize(now); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if sub.Status != StatusExpired {
		t.Fatalf("expected expired status after renewal passed, got %q", sub.Status)
	}
}

func TestNormalize_RejectsFutureStartDate(t *testing.T) {
	sub := validSubscription()
	sub.StartDate = date(2024, 2, 1)

	err := sub.Normalize(date(2024, 1, 15))
	if !errors.Is(err, ErrInvalidStartDate) {
		t.Fatalf("expected ErrInvalidStartDate, got %v", err)
	}
}

func TestNormalize_StartDateEqualToNowIsValid(t *testing.T) {
	now := date(2024, 1, 15)
	sub := validSubscription()
	sub.StartDate = now

	if err := sub.Normalize(now); err != nil {
		t.Fatalf("expected boundary start date to be accepted, got %v", err)
	}
}

func TestNormalize_RejectsRenewalBeforeStart(t *testing.T) {
	sub := validSubscription()
	sub.RenewalDate = sub.StartDate.AddDate(0, 0, -1)

	err := sub.Normalize(date(2024, 1, 15))
	if !errors.Is(err, ErrInvalidRenewalDate) {
		t.Fatalf("expected ErrInvalidRenewalDate, got %v", err)
	}

	sub = validSubscription()
	sub.RenewalDate = sub.StartDate
	err = sub.Normalize(date(2024, 1, 15))
	if !errors.Is(err, ErrInvalidRenewalDate) {
		t.Fatalf("expected ErrInvalidRenewalDate for renewal == start, got %v", err)
	}
}

func TestNormalize_UnknownFrequencyWithExplicitRenewalIsValid(t *testing.T) {
	sub := validSubscription()
	sub.Frequency = ""
	sub.RenewalDate = date(2024, 6, 1)

	if err := sub.Normalize(date(2024, 1, 15)); err != nil {
		t.Fatalf("expected explicit renewal date to bypass frequency check, got %v", err)
	}
}

func TestNormalize_DefaultsCurrencyAndStatus(t *testing.T) {
	sub := validSubscription()
	sub.Currency = ""
	sub.Status = ""

	if err := sub.Normalize(date(2024, 1, 15)); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if sub.Currency != CurrencyUSD {
		t.Fatalf("expected USD default currency, got %q", sub.Currency)
	}
	if sub.Status != StatusActive {
		t.Fatalf("expected active default status, got %q", sub.Status)
	}
}

func TestNormalize_ValidationFailures(t *testing.T) {
	now := date(2024, 1, 15)

	tests := []struct {
		name   string
		mutate func(*Subscription)
		want   error
	}{
		{"short name", func(s *Subscription) { s.Name = "x" }, ErrInvalidName},
		{"zero price", func(s *Subscription) { s.Price = 0 }, ErrInvalidPrice},
		{"bad currency", func(s *Subscription) { s.Currency = "JPY" }, ErrInvalidCurrency},
		{"bad category", func(s *Subscription) { s.Category = "misc" }, ErrInvalidCategory},
		{"no payment method", func(s *Subscription) { s.PaymentMethod = "" }, ErrMissingPayment},
		{"bad status", func(s *Subscription) { s.Status = "paused" }, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubscription()
			tt.mutate(&sub)
			if err := sub.Normalize(now); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
