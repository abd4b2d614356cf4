/**
 * @description
 * Cron-driven dispatcher for reminder runs. Two jobs:
 *
 * 1. ResumeDueRuns (every minute): claims wakeups whose resume instant has
 *    been reached and re-enters the run for each.
 * 2. SweepUpcomingRenewals (daily): re-triggers runs for every active
 *    subscription renewing within the reminder window. This catches
 *    subscriptions whose wakeup was lost (worker crash between claim and
 *    fire) and ones created before the scheduler was running; re-entering a
 *    run is idempotent because past offsets are skipped by date.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

// claimBatchSize bounds how many wakeups one poll handles.
const claimBatchSize = 100

// WakeupClaimer hands out due wakeups, each at most once.
type WakeupClaimer interface {
	ClaimDueWakeups(ctx context.Context, now time.Time, limit int) ([]store.Wakeup, error)
}

// RenewalLister feeds the daily catch-up sweep.
type RenewalLister interface {
	ListActiveWithRenewalBetween(ctx context.Context, from, to time.Time) ([]*domain.Subscription, error)
}

// DispatcherSchedules carries the cron expressions for the two jobs.
type DispatcherSchedules struct {
	WakeupPoll   string
	RenewalSweep string
}

// Dispatcher owns the cron instance driving reminder runs.
type Dispatcher struct {
	cron      *cron.Cron
	runner    RunStarter
	wakeups   WakeupClaimer
	renewals  RenewalLister
	logger    *slog.Logger
	schedules DispatcherSchedules
	now       func() time.Time
}

// NewDispatcher creates a dispatcher with panic recovery on its jobs.
func NewDispatcher(runner RunStarter, wakeups WakeupClaimer, renewals RenewalLister, logger *slog.Logger, schedules DispatcherSchedules) *Dispatcher {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Dispatcher{
		cron:      c,
		runner:    runner,
		wakeups:   wakeups,
		renewals:  renewals,
		logger:    logger,
		schedules: schedules,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (d *Dispatcher) Start() {
	if _, err := d.cron.AddFunc(d.schedules.WakeupPoll, d.ResumeDueRuns); err != nil {
		d.logger.Error("failed to schedule wakeup poll job", "error", err)
	} else {
		d.logger.Info("scheduled wakeup poll job", "schedule", d.schedules.WakeupPoll)
	}

	if _, err := d.cron.AddFunc(d.schedules.RenewalSweep, d.SweepUpcomingRenewals); err != nil {
		d.logger.Error("failed to schedule renewal sweep job", "error", err)
	} else {
		d.logger.Info("scheduled renewal sweep job", "schedule", d.schedules.RenewalSweep)
	}

	d.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (d *Dispatcher) Stop() context.Context {
	return d.cron.Stop()
}

// ResumeDueRuns claims every due wakeup and resumes its run. One run's
// failure never affects another's.
func (d *Dispatcher) ResumeDueRuns() {
	ctx := context.Background()
	now := d.now()

	wakeups, err := d.wakeups.ClaimDueWakeups(ctx, now, claimBatchSize)
	if err != nil {
		d.logger.Error("failed to claim due wakeups", "error", err)
		return
	}
	if len(wakeups) == 0 {
		return
	}

	d.logger.Info("resuming due reminder runs", "count", len(wakeups))
	for _, w := range wakeups {
		outcome, err := d.runner.Run(ctx, w.SubscriptionID)
		if err != nil {
			d.logger.Error("reminder run failed on resume",
				"subscription_id", w.SubscriptionID, "error", err)
			continue
		}
		d.logger.Info("reminder run resumed",
			"subscription_id", w.SubscriptionID, "state", outcome.State)
	}
}

// SweepUpcomingRenewals re-triggers runs for active subscriptions renewing
// within the widest reminder offset.
func (d *Dispatcher) SweepUpcomingRenewals() {
	ctx := context.Background()
	now := d.now()
	horizon := now.AddDate(0, 0, ReminderOffsets[0]+1)

	subs, err := d.renewals.ListActiveWithRenewalBetween(ctx, now, horizon)
	if err != nil {
		d.logger.Error("failed to list upcoming renewals for sweep", "error", err)
		return
	}
	if len(subs) == 0 {
		d.logger.Info("renewal sweep found nothing to do")
		return
	}

	d.logger.Info("renewal sweep re-triggering runs", "count", len(subs))
	for _, sub := range subs {
		if _, err := d.runner.Run(ctx, sub.ID); err != nil {
			d.logger.Error("reminder run failed during sweep",
				"subscription_id", sub.ID, "error", err)
		}
	}
}
