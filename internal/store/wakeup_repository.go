/**
 * @description
 * This file implements the durable-sleep substrate: a table of pending
 * wakeups, one per subscription. A reminder run suspends by writing its
 * resume instant here and returning; the scheduler claims due rows and
 * re-enters the run. Claiming deletes the row, so each suspension resumes
 * exactly once.
 */
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Wakeup is one pending resume instant for a subscription's reminder run.
type Wakeup struct {
	SubscriptionID string
	ResumeAt       time.Time
}

// WakeupRepository handles database operations for reminder wakeups.
type WakeupRepository struct {
	db *pgxpool.Pool
}

// NewWakeupRepository creates a new wakeup repository.
func NewWakeupRepository(db *pgxpool.Pool) *WakeupRepository {
	return &WakeupRepository{db: db}
}

// ScheduleWakeup records that the run for a subscription must resume at the
// given instant. A later suspension for the same subscription replaces the
// earlier one.
func (r *WakeupRepository) ScheduleWakeup(ctx context.Context, subscriptionID string, resumeAt time.Time) error {
	query := `
        INSERT INTO reminder_wakeups (subscription_id, resume_at)
        VALUES ($1, $2)
        ON CONFLICT (subscription_id) DO UPDATE SET resume_at = EXCLUDED.resume_at
    `
	_, err := r.db.Exec(ctx, query, subscriptionID, resumeAt)
	return err
}

// ClaimDueWakeups atomically removes and returns up to limit wakeups whose
// resume instant has been reached. Concurrent claimers skip rows another
// worker already locked.
func (r *WakeupRepository) ClaimDueWakeups(ctx context.Context, now time.Time, limit int) ([]Wakeup, error) {
	query := `
        DELETE FROM reminder_wakeups
        WHERE subscription_id IN (
            SELECT subscription_id FROM reminder_wakeups
            WHERE resume_at <= $1
            ORDER BY resume_at
            LIMIT $2
            FOR UPDATE SKIP LOCKED
        )
        RETURNING subscription_id, resume_at
    `
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wakeups []Wakeup
	for rows.Next() {
		var w Wakeup
		if err := rows.Scan(&w.SubscriptionID, &w.ResumeAt); err != nil {
			return nil, err
		}
		wakeups = append(wakeups, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return wakeups, nil
}

// CancelWakeup drops the pending wakeup for a subscription, if present.
func (r *WakeupRepository) CancelWakeup(ctx context.Context, subscriptionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reminder_wakeups WHERE subscription_id = $1`, subscriptionID)
	return err
}
