/**
 * @description
 * This package turns domain events into broker publishes. The actual email
 * rendering and SMTP delivery belong to the worker consuming the
 * notifications exchange; from the caller's perspective a send is a single
 * synchronous call whose result is observed before moving on.
 */
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RoshisRai/Subscription-API/internal/domain"
)

// Routing keys on the notifications exchange.
const (
	RoutingKeyReminder   = "subscription.reminder"
	RoutingKeyActivation = "user.activation"
)

// Producer publishes a JSON payload under a routing key.
type Producer interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// Mailer publishes reminder and activation email events.
type Mailer struct {
	producer Producer
	now      func() time.Time
}

// NewMailer creates a Mailer on top of a broker producer.
func NewMailer(producer Producer) *Mailer {
	return &Mailer{producer: producer, now: time.Now}
}

// SendReminder publishes a renewal reminder for one subscription and offset.
func (m *Mailer) SendReminder(ctx context.Context, daysBefore int, user *domain.User, sub *domain.Subscription) error {
	event := domain.ReminderEvent{
		EventID:          uuid.NewString(),
		To:               user.Email,
		UserName:         user.Name,
		Label:            ReminderLabel(daysBefore),
		DaysBefore:       daysBefore,
		SubscriptionID:   sub.ID,
		SubscriptionName: sub.Name,
		Price:            sub.Price,
		Currency:         sub.Currency,
		Frequency:        sub.Frequency,
		PaymentMethod:    sub.PaymentMethod,
		RenewalDate:      sub.RenewalDate,
		OccurredAt:       m.now(),
	}
	if err := m.producer.Publish(ctx, RoutingKeyReminder, event); err != nil {
		return fmt.Errorf("publish reminder for subscription %s: %w", sub.ID, err)
	}
	return nil
}

// SendActivation publishes the activation email event for a new account.
func (m *Mailer) SendActivation(ctx context.Context, user *domain.User, activationURL string, expiresAt time.Time) error {
	event := domain.ActivationEvent{
		EventID:       uuid.NewString(),
		To:            user.Email,
		UserName:      user.Name,
		ActivationURL: activationURL,
		ExpiresAt:     expiresAt,
		OccurredAt:    m.now(),
	}
	if err := m.producer.Publish(ctx, RoutingKeyActivation, event); err != nil {
		return fmt.Errorf("publish activation for user %s: %w", user.ID, err)
	}
	return nil
}

// ReminderLabel names a reminder step, e.g. "7 days before reminder".
func ReminderLabel(daysBefore int) string {
	return fmt.Sprintf("%d days before reminder", daysBefore)
}
