/**
 * @description
 * Subscription management. Every create and every update that touches the
 * start date, frequency or renewal date goes through domain.Normalize, so
 * the renewal date is always derived when absent and an overdue renewal
 * always forces the status to expired. Mutations that leave the
 * subscription active with a future renewal (re)trigger its reminder run.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/RoshisRai/Subscription-API/internal/domain"
)

// SubscriptionStore is the slice of the subscription repository the service
// needs.
type SubscriptionStore interface {
	CreateSubscription(ctx context.Context, sub *domain.Subscription) error
	GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *domain.Subscription) error
	UpdateSubscriptionStatus(ctx context.Context, id string, status domain.Status) error
	DeleteSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error)
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]*domain.Subscription, error)
	ListUpcomingRenewals(ctx context.Context, userID string, from, to time.Time) ([]*domain.Subscription, error)
}

// RunStarter triggers a reminder run for a subscription.
type RunStarter interface {
	Run(ctx context.Context, subscriptionID string) (RunOutcome, error)
}

// WakeupCanceler drops a pending reminder wakeup for a subscription.
type WakeupCanceler interface {
	CancelWakeup(ctx context.Context, subscriptionID string) error
}

// SubscriptionService implements subscription CRUD and run triggering.
type SubscriptionService struct {
	subs    SubscriptionStore
	wakeups WakeupCanceler
	runs    RunStarter
	logger  *slog.Logger
	now     func() time.Time
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(subs SubscriptionStore, wakeups WakeupCanceler, runs RunStarter, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subs:    subs,
		wakeups: wakeups,
		runs:    runs,
		logger:  logger,
		now:     time.Now,
	}
}

// SubscriptionInput carries the caller-supplied subscription fields.
type SubscriptionInput struct {
	Name          string           `json:"name"`
	Price         float64          `json:"price"`
	Currency      domain.Currency  `json:"currency"`
	Frequency     domain.Frequency `json:"frequency"`
	Category      domain.Category  `json:"category"`
	PaymentMethod string           `json:"payment_method"`
	Status        domain.Status    `json:"status"`
	StartDate     time.Time        `json:"start_date"`
	RenewalDate   time.Time        `json:"renewal_date"`
}

// Create validates and stores a new subscription for ownerID, then triggers
// its reminder run.
func (s *SubscriptionService) Create(ctx context.Context, ownerID string, input SubscriptionInput) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Price:         input.Price,
		Currency:      input.Currency,
		Frequency:     input.Frequency,
		Category:      input.Category,
		PaymentMethod: input.PaymentMethod,
		Status:        input.Status,
		StartDate:     input.StartDate,
		RenewalDate:   input.RenewalDate,
		UserID:        ownerID,
	}
	if err := sub.Normalize(s.now()); err != nil {
		return nil, err
	}

	if err := s.subs.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("subscription created", "subscription_id", sub.ID, "user_id", ownerID)

	s.triggerRun(ctx, sub.ID)
	return sub, nil
}

// Update applies new field values, re-normalizes, and re-triggers the run
// when scheduling-relevant fields changed.
func (s *SubscriptionService) Update(ctx context.Context, id string, input SubscriptionInput) (*domain.Subscription, error) {
	sub, err := s.subs.GetSubscriptionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reschedule := !input.StartDate.IsZero() && !input.StartDate.Equal(sub.StartDate) ||
		input.Frequency != "" && input.Frequency != sub.Frequency ||
		!input.RenewalDate.IsZero() && !input.RenewalDate.Equal(sub.RenewalDate) ||
		input.Status != "" && input.Status != sub.Status

	if input.Name != "" {
		sub.Name = input.Name
	}
	if input.Price != 0 {
		sub.Price = input.Price
	}
	if input.Currency != "" {
		sub.Currency = input.Currency
	}
	if input.Category != "" {
		sub.Category = input.Category
	}
	if input.PaymentMethod != "" {
		sub.PaymentMethod = input.PaymentMethod
	}
	if input.Status != "" {
		sub.Status = input.Status
	}
	if !input.StartDate.IsZero() {
		sub.StartDate = input.StartDate
	}
	if input.Frequency != "" && input.Frequency != sub.Frequency {
		sub.Frequency = input.Frequency
		if input.RenewalDate.IsZero() {
			// Let Normalize derive the renewal date from the new cadence.
			sub.RenewalDate = time.Time{}
		}
	}
	if !input.RenewalDate.IsZero() {
		sub.RenewalDate = input.RenewalDate
	}

	if err := sub.Normalize(s.now()); err != nil {
		return nil, err
	}

	if err := s.subs.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	if reschedule {
		s.triggerRun(ctx, sub.ID)
	}
	return sub, nil
}

// Cancel flips a subscription to cancelled and drops its pending wakeup.
// Dropping the wakeup is best-effort: a resumed run re-checks the status
// anyway and terminates on a cancelled subscription.
func (s *SubscriptionService) Cancel(ctx context.Context, id string) (*domain.Subscription, error) {
	if err := s.subs.UpdateSubscriptionStatus(ctx, id, domain.StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.wakeups.CancelWakeup(ctx, id); err != nil {
		s.logger.Error("failed to drop pending wakeup", "subscription_id", id, "error", err)
	}
	s.logger.Info("subscription cancelled", "subscription_id", id)
	return s.subs.GetSubscriptionByID(ctx, id)
}

// Delete removes a subscription; its pending wakeup cascades away with it.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	return s.subs.DeleteSubscription(ctx, id)
}

// Get returns one subscription by id.
func (s *SubscriptionService) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	return s.subs.GetSubscriptionByID(ctx, id)
}

// ListAll returns every subscription.
func (s *SubscriptionService) ListAll(ctx context.Context) ([]*domain.Subscription, error) {
	return s.subs.ListSubscriptions(ctx)
}

// ListByUser returns the subscriptions owned by userID.
func (s *SubscriptionService) ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	return s.subs.ListSubscriptionsByUser(ctx, userID)
}

// UpcomingRenewals returns the user's active subscriptions renewing within
// the widest reminder offset.
func (s *SubscriptionService) UpcomingRenewals(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	now := s.now()
	return s.subs.ListUpcomingRenewals(ctx, userID, now, now.AddDate(0, 0, ReminderOffsets[0]))
}

// triggerRun starts or restarts the reminder run. A substrate failure is
// logged, not propagated: the subscription mutation already succeeded, and
// the daily sweep re-triggers runs for anything with an upcoming renewal.
func (s *SubscriptionService) triggerRun(ctx context.Context, id string) {
	outcome, err := s.runs.Run(ctx, id)
	if err != nil {
		s.logger.Error("failed to start reminder run", "subscription_id", id, "error", err)
		return
	}
	s.logger.Info("reminder run triggered", "subscription_id", id, "state", outcome.State)
}
