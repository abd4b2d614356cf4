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

type runStoreStub struct {
	sub     *domain.Subscription
	subErr  error
	user    *domain.User
	userErr error
}

func (s *runStoreStub) GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	return s.sub, nil
}

func (s *runStoreStub) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if s.userErr != nil {
		return nil, s.userErr
	}
	return s.user, nil
}

type wakeupStub struct {
	scheduled map[string]time.Time
	err       error
}

func (s *wakeupStub) ScheduleWakeup(ctx context.Context, subscriptionID string, resumeAt time.Time) error {
	if s.err != nil {
		return s.err
	}
	if s.scheduled == nil {
		s.scheduled = map[string]time.Time{}
	}
	s.scheduled[subscriptionID] = resumeAt
	return nil
}

type notifierStub struct {
	sent []int
	err  error
}

func (s *notifierStub) SendReminder(ctx context.Context, daysBefore int, user *domain.User, sub *domain.Subscription) error {
	s.sent = append(s.sent, daysBefore)
	return s.err
}

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func activeSubscription(renewal time.Time) *domain.Subscription {
	return &domain.Subscription{
		ID:          "sub-1",
		Name:        "Netflix",
		Status:      domain.StatusActive,
		StartDate:   renewal.AddDate(0, 0, -30),
		RenewalDate: renewal,
		UserID:      "user-1",
	}
}

func newTestRunner(st ReminderStore, wakeups *wakeupStub, notifier *notifierStub) *ReminderRunner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := NewReminderRunner(st, wakeups, notifier, logger)
	runner.now = func() time.Time { return testNow }
	return runner
}

func TestRun_FiresTodayOffsetThenSuspends(t *testing.T) {
	// Renewal is exactly 7 days out: the 7-day reminder is due today.
	renewal := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	st := &runStoreStub{sub: activeSubscription(renewal), user: &domain.User{ID: "user-1", Email: "a@b.com"}}
	wakeups := &wakeupStub{}
	notifier := &notifierStub{}
	runner := newTestRunner(st, wakeups, notifier)

	outcome, err := runner.Run(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if outcome.State != RunSuspended {
		t.Fatalf("expected suspended state, got %q", outcome.State)
	}
	if len(notifier.sent) != 1 || notifier.sent[0] != 7 {
		t.Fatalf("expected exactly the 7-day reminder to fire, got %v", notifier.sent)
	}
	wantResume := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) // renewal-5d at 09:00
	if got := wakeups.scheduled["sub-1"]; !got.Equal(wantResume) {
		t.Fatalf("expected wakeup at %v, got %v", wantResume, got)
	}
	if !outcome.ResumeAt.Equal(wantResume) {
		t.Fatalf("expected outcome resume at %v, got %v", wantResume, outcome.ResumeAt)
	}
}

func TestRun_SkipsPastOffsetsOnResume(t *testing.T) {
	// Renewal 2 days out: offsets 7 and 5 are already past, 2 is due today,
	// 1 is tomorrow. A prior run handled 7 and 5; no double fire.
	renewal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	st := &runStoreStub{sub: activeSubscription(renewal), user: &domain.User{ID: "user-1"}}
	wakeups := &wakeupStub{}
	notifier := &notifierStub{}
	runner := newTestRunner(st, wakeups, notifier)

	outcome, err := runner.Run(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(notifier.sent) != 1 || notifier.sent[0] != 2 {
		t.Fatalf("expected only the 2-day reminder, got %v", notifier.sent)
	}
	if outcome.State != RunSuspended {
		t.Fatalf("expected suspension for the 1-day reminder, got %q", outcome.State)
	}
	wantResume := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	if got := wakeups.scheduled["sub-1"]; !got.Equal(wantResume) {
		t.Fatalf("expected wakeup at %v, got %v", wantResume, got)
	}
}

func TestRun_CompletesWhenAllOffsetsBehind(t *testing.T) {
	// Renewal is today: every reminder date is in the past.
	renewal := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	st := &runStoreStub{sub: activeSubscription(renewal), user: &domain.User{ID: "user-1"}}
	wakeups := &wakeupStub{}
	notifier := &notifierStub{}
	runner := newTestRunner(st, wakeups, notifier)

	outcome, err := runner.Run(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if outcome.State != RunCompleted {
		t.Fatalf("expected completed state, got %q", outcome.State)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no reminders, got %v", notifier.sent)
	}
	if len(wakeups.scheduled) != 0 {
		t.Fatalf("expected no wakeups, got %v", wakeups.scheduled)
	}
}

func TestRun_StopsWhenSubscriptionNotActive(t *testing.T) {
	// Cancelled while suspended: the resume re-checks status and stops.
	renewal := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	sub := activeSubscription(renewal)
	sub.Status = domain.StatusCancelled
	st := &runStoreStub{sub: sub, user: &domain.User{ID: "user-1"}}
	notifier := &notifierStub{}
	runner := newTestRunner(st, &wakeupStub{}, notifier)

	outcome, err := runner.Run(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if outcome.State != RunInactive {
		t.Fatalf("expected inactive state, got %q", outcome.State)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no reminders for a cancelled subscription, got %v", notifier.sent)
	}
}

func TestRun_LapsedWhenRenewalPassed(t *testing.T) {
	renewal := time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC) // 3 days ago
	st := &runStoreStub{sub: activeSubscription(renewal), user: &domain.User{ID: "user-1"}}
	notifier := &notifierStub{}
	runner := newTestRunner(st, &wakeupStub{}, notifier)

	outcome, err := runner.Run(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if outcome.State != RunLapsed {
		t.Fatalf("expected lapsed state, got %q", outcome.State)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no reminders for a lapsed subscription, got %v", notifier.sent)
	}
}

func TestRun_NotFoundIsTerminalNotAnError(t *testing.T) {
	st := &runStoreStub{subErr: store.ErrSubscriptionNotFound}
	runner := newTestRunner(st, &wakeupStub{}, &notifierStub{})

	outcome, err := runner.Run(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected terminal outcome, got error %v", err)
	}
	if outcome.State != RunNotFound {
		t.Fatalf("expected not_found state, got %q", outcome.State)
	}
}

func TestRun_SendFailureDoesNotAbortRun(t *testing.T) {
	renewal := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	st := &runStoreStub{sub: activeSubscription(renewal), user: &domain.User{ID: "user-1"}}
	wakeups := &wakeupStub{}
	notifier := &notifierStub{err: errors.New("smtp unreachable")}
	runner := newTestRunner(st, wakeups, notifier)

	outcome, err := runner.Run(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("expected send failure to be swallowed, got %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected exactly one send attempt, got %v", notifier.sent)
	}
	if outcome.State != RunSuspended {
		t.Fatalf("expected run to continue to suspension, got %q", outcome.State)
	}
	if _, ok := wakeups.scheduled["sub-1"]; !ok {
		t.Fatal("expected wakeup scheduled despite send failure")
	}
}

func TestRun_WakeupFailureIsFatal(t *testing.T) {
	renewal := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	st := &runStoreStub{sub: activeSubscription(renewal), user: &domain.User{ID: "user-1"}}
	wakeups := &wakeupStub{err: errors.New("db unavailable")}
	runner := newTestRunner(st, wakeups, &notifierStub{})

	_, err := runner.Run(context.Background(), "sub-1")
	if !errors.Is(err, ErrSleepSubstrate) {
		t.Fatalf("expected ErrSleepSubstrate, got %v", err)
	}
}

func TestRun_ReTriggerIsIdempotentAcrossDays(t *testing.T) {
	// Day one fires 7 and suspends. Re-entering two days later fires only
	// the 5-day reminder, never the 7 again.
	renewal := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	st := &runStoreStub{sub: activeSubscription(renewal), user: &domain.User{ID: "user-1"}}
	wakeups := &wakeupStub{}
	notifier := &notifierStub{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := NewReminderRunner(st, wakeups, notifier, logger)

	current := testNow // 2024-06-01
	runner.now = func() time.Time { return current }

	if _, err := runner.Run(context.Background(), "sub-1"); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}

	current = testNow.AddDate(0, 0, 2) // 2024-06-03, the 5-day reminder date
	if _, err := runner.Run(context.Background(), "sub-1"); err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	want := []int{7, 5}
	if len(notifier.sent) != len(want) {
		t.Fatalf("expected fires %v, got %v", want, notifier.sent)
	}
	for i := range want {
		if notifier.sent[i] != want[i] {
			t.Fatalf("expected fires %v, got %v", want, notifier.sent)
		}
	}
}
