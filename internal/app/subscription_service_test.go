package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

type subStoreStub struct {
	created *domain.Subscription
	updated *domain.Subscription
	byID    *domain.Subscription
	status  domain.Status
}

func (s *subStoreStub) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	s.created = sub
	return nil
}

func (s *subStoreStub) GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error) {
	if s.byID == nil {
		return nil, store.ErrSubscriptionNotFound
	}
	copied := *s.byID
	return &copied, nil
}

func (s *subStoreStub) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	s.updated = sub
	s.byID = sub
	return nil
}

func (s *subStoreStub) UpdateSubscriptionStatus(ctx context.Context, id string, status domain.Status) error {
	s.status = status
	if s.byID != nil {
		s.byID.Status = status
	}
	return nil
}

func (s *subStoreStub) DeleteSubscription(ctx context.Context, id string) error { return nil }

func (s *subStoreStub) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	return nil, nil
}

func (s *subStoreStub) ListSubscriptionsByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	return nil, nil
}

func (s *subStoreStub) ListUpcomingRenewals(ctx context.Context, userID string, from, to time.Time) ([]*domain.Subscription, error) {
	return nil, nil
}

type triggerStub struct {
	triggered []string
}

func (s *triggerStub) Run(ctx context.Context, subscriptionID string) (RunOutcome, error) {
	s.triggered = append(s.triggered, subscriptionID)
	return RunOutcome{State: RunSuspended}, nil
}

type wakeupCancelStub struct {
	cancelled []string
}

func (s *wakeupCancelStub) CancelWakeup(ctx context.Context, subscriptionID string) error {
	s.cancelled = append(s.cancelled, subscriptionID)
	return nil
}

var serviceNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestSubscriptionService(st SubscriptionStore, runs RunStarter) *SubscriptionService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewSubscriptionService(st, &wakeupCancelStub{}, runs, logger)
	svc.now = func() time.Time { return serviceNow }
	return svc
}

func validInput() SubscriptionInput {
	return SubscriptionInput{
		Name:          "Netflix",
		Price:         15.99,
		Frequency:     domain.FrequencyMonthly,
		Category:      domain.CategoryEntertainment,
		PaymentMethod: "credit card",
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate_DerivesRenewalAndTriggersRun(t *testing.T) {
	st := &subStoreStub{}
	trigger := &triggerStub{}
	svc := newTestSubscriptionService(st, trigger)

	sub, err := svc.Create(context.Background(), "user-1", validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC); !sub.RenewalDate.Equal(want) {
		t.Fatalf("expected derived renewal %v, got %v", want, sub.RenewalDate)
	}
	if sub.Status != domain.StatusActive {
		t.Fatalf("expected active status, got %q", sub.Status)
	}
	if sub.UserID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", sub.UserID)
	}
	if len(trigger.triggered) != 1 || trigger.triggered[0] != sub.ID {
		t.Fatalf("expected one run trigger for %s, got %v", sub.ID, trigger.triggered)
	}
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	st := &subStoreStub{}
	trigger := &triggerStub{}
	svc := newTestSubscriptionService(st, trigger)

	input := validInput()
	input.StartDate = serviceNow.AddDate(0, 0, 1)

	_, err := svc.Create(context.Background(), "user-1", input)
	if !errors.Is(err, domain.ErrInvalidStartDate) {
		t.Fatalf("expected ErrInvalidStartDate, got %v", err)
	}
	if st.created != nil {
		t.Fatal("expected nothing stored for invalid input")
	}
	if len(trigger.triggered) != 0 {
		t.Fatal("expected no run trigger for invalid input")
	}
}

func TestUpdate_FrequencyChangeRederivesRenewalAndRetriggers(t *testing.T) {
	existing := &domain.Subscription{
		ID:            "sub-1",
		Name:          "Netflix",
		Price:         15.99,
		Currency:      domain.CurrencyUSD,
		Frequency:     domain.FrequencyMonthly,
		Category:      domain.CategoryEntertainment,
		PaymentMethod: "credit card",
		Status:        domain.StatusActive,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RenewalDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		UserID:        "user-1",
	}
	st := &subStoreStub{byID: existing}
	trigger := &triggerStub{}
	svc := newTestSubscriptionService(st, trigger)

	updated, err := svc.Update(context.Background(), "sub-1", SubscriptionInput{
		Frequency: domain.FrequencyYearly,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if want := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC); !updated.RenewalDate.Equal(want) {
		t.Fatalf("expected re-derived renewal %v, got %v", want, updated.RenewalDate)
	}
	if len(trigger.triggered) != 1 {
		t.Fatalf("expected a re-trigger after frequency change, got %v", trigger.triggered)
	}
}

func TestUpdate_CosmeticChangeDoesNotRetrigger(t *testing.T) {
	existing := &domain.Subscription{
		ID:            "sub-1",
		Name:          "Netflix",
		Price:         15.99,
		Currency:      domain.CurrencyUSD,
		Frequency:     domain.FrequencyMonthly,
		Category:      domain.CategoryEntertainment,
		PaymentMethod: "credit card",
		Status:        domain.StatusActive,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RenewalDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		UserID:        "user-1",
	}
	st := &subStoreStub{byID: existing}
	trigger := &triggerStub{}
	svc := newTestSubscriptionService(st, trigger)

	if _, err := svc.Update(context.Background(), "sub-1", SubscriptionInput{Name: "Netflix Premium"}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(trigger.triggered) != 0 {
		t.Fatalf("expected no re-trigger for a name change, got %v", trigger.triggered)
	}
}

func TestCancel_SetsCancelledStatusAndDropsWakeup(t *testing.T) {
	existing := &domain.Subscription{ID: "sub-1", Status: domain.StatusActive}
	st := &subStoreStub{byID: existing}
	wakeups := &wakeupCancelStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewSubscriptionService(st, wakeups, &triggerStub{}, logger)
	svc.now = func() time.Time { return serviceNow }

	sub, err := svc.Cancel(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if st.status != domain.StatusCancelled {
		t.Fatalf("expected cancelled status persisted, got %q", st.status)
	}
	if sub.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled subscription returned, got %q", sub.Status)
	}
	if len(wakeups.cancelled) != 1 || wakeups.cancelled[0] != "sub-1" {
		t.Fatalf("expected pending wakeup dropped for sub-1, got %v", wakeups.cancelled)
	}
}
