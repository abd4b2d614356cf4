/**
 * @description
 * This file contains the reminder run state machine. For one subscription it
 * walks the fixed offset list (7, 5, 2, 1 days before renewal), fires the
 * reminder whose date is today, skips offsets already in the past, and
 * suspends for the first offset still in the future by persisting a wakeup.
 *
 * A run never stores progress. Every entry re-reads the subscription and
 * re-derives which offsets remain from today's date versus the renewal date,
 * so resuming after a process restart is safe without a checkpoint.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

// ReminderOffsets are the days-before-renewal steps, walked in descending
// order. Order matters: later offsets assume earlier ones are behind today.
var ReminderOffsets = []int{7, 5, 2, 1}

// reminderHour is the local hour of day a reminder fires at.
const reminderHour = 9

// ErrSleepSubstrate marks a failure to persist a wakeup. The run is dead
// until re-triggered externally; it never self-retries.
var ErrSleepSubstrate = errors.New("failed to schedule reminder wakeup")

// RunState is the state a reminder run finished in.
type RunState string

const (
	RunNotFound  RunState = "not_found"
	RunInactive  RunState = "inactive"
	RunLapsed    RunState = "lapsed"
	RunSuspended RunState = "suspended"
	RunCompleted RunState = "completed"
)

// RunOutcome reports what a single entry into a run did.
type RunOutcome struct {
	State    RunState
	ResumeAt time.Time // set when State is RunSuspended
	Fired    []int     // offsets notified during this entry
}

// ReminderStore provides the subscription and owner lookups a run needs.
type ReminderStore interface {
	GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// WakeupScheduler persists "resume this run at instant T".
type WakeupScheduler interface {
	ScheduleWakeup(ctx context.Context, subscriptionID string, resumeAt time.Time) error
}

// ReminderNotifier delivers one reminder for one offset.
type ReminderNotifier interface {
	SendReminder(ctx context.Context, daysBefore int, user *domain.User, sub *domain.Subscription) error
}

// ReminderRunner executes reminder runs. Many runs may execute concurrently;
// each is independent and touches only its own subscription.
type ReminderRunner struct {
	store    ReminderStore
	wakeups  WakeupScheduler
	notifier ReminderNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewReminderRunner creates a runner.
func NewReminderRunner(st ReminderStore, wakeups WakeupScheduler, notifier ReminderNotifier, logger *slog.Logger) *ReminderRunner {
	return &ReminderRunner{
		store:    st,
		wakeups:  wakeups,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Run enters the reminder run for a subscription, either as a fresh trigger
// or as a resume after a wakeup. It fires due reminders, suspends for the
// next future one, and reports the terminal or suspended state. Only a
// store failure or a wakeup persistence failure returns a non-nil error.
func (r *ReminderRunner) Run(ctx context.Context, subscriptionID string) (RunOutcome, error) {
	now := r.now()
	today := dayOf(now)

	sub, err := r.store.GetSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			r.logger.Info("reminder run stopped, subscription missing", "subscription_id", subscriptionID)
			return RunOutcome{State: RunNotFound}, nil
		}
		return RunOutcome{}, fmt.Errorf("fetch subscription %s: %w", subscriptionID, err)
	}

	// Status is re-checked on every resume so a cancellation while
	// suspended stops the run instead of firing a stale reminder.
	if sub.Status != domain.StatusActive {
		r.logger.Info("reminder run stopped, subscription not active",
			"subscription_id", sub.ID, "status", sub.Status)
		return RunOutcome{State: RunInactive}, nil
	}

	renewalDay := dayOf(sub.RenewalDate.In(now.Location()))
	if renewalDay.Before(today) {
		r.logger.Info("reminder run stopped, renewal date has passed",
			"subscription_id", sub.ID, "renewal_date", sub.RenewalDate)
		return RunOutcome{State: RunLapsed}, nil
	}

	user, err := r.store.GetUserByID(ctx, sub.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			r.logger.Info("reminder run stopped, owner missing",
				"subscription_id", sub.ID, "user_id", sub.UserID)
			return RunOutcome{State: RunNotFound}, nil
		}
		return RunOutcome{}, fmt.Errorf("fetch user %s: %w", sub.UserID, err)
	}

	outcome := RunOutcome{State: RunCompleted}
	for _, daysBefore := range ReminderOffsets {
		reminderDay := renewalDay.AddDate(0, 0, -daysBefore)

		switch {
		case reminderDay.Equal(today):
			// Due right now. A send failure is logged and the run moves
			// on; the offset is not retried.
			if err := r.notifier.SendReminder(ctx, daysBefore, user, sub); err != nil {
				r.logger.Error("reminder send failed",
					"subscription_id", sub.ID, "days_before", daysBefore, "error", err)
			} else {
				r.logger.Info("reminder sent",
					"subscription_id", sub.ID, "days_before", daysBefore, "to", user.Email)
			}
			outcome.Fired = append(outcome.Fired, daysBefore)

		case reminderDay.After(today):
			// First future offset: suspend until its instant and stop
			// walking. The resume re-enters Run from the top.
			resumeAt := reminderDay.Add(reminderHour * time.Hour)
			if err := r.wakeups.ScheduleWakeup(ctx, sub.ID, resumeAt); err != nil {
				return outcome, fmt.Errorf("%w: subscription %s at %s: %v",
					ErrSleepSubstrate, sub.ID, resumeAt, err)
			}
			r.logger.Info("reminder run suspended",
				"subscription_id", sub.ID, "days_before", daysBefore, "resume_at", resumeAt)
			outcome.State = RunSuspended
			outcome.ResumeAt = resumeAt
			return outcome, nil

		default:
			// Already passed. Skipping here is what makes re-triggering
			// idempotent: a prior run handled this offset on its day.
		}
	}

	r.logger.Info("reminder run completed", "subscription_id", sub.ID)
	return outcome, nil
}

// dayOf truncates an instant to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
