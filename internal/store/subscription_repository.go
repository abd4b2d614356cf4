/**
 * @description
 * This file implements the data access layer for subscriptions. It contains
 * all the SQL queries and logic for interacting with the subscriptions
 * table.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RoshisRai/Subscription-API/internal/domain"
)

const subscriptionColumns = `id, name, price, currency, frequency, category, payment_method, status, start_date, renewal_date, user_id, created_at, updated_at`

// SubscriptionRepository handles database operations for subscriptions.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Price,
		&sub.Currency,
		&sub.Frequency,
		&sub.Category,
		&sub.PaymentMethod,
		&sub.Status,
		&sub.StartDate,
		&sub.RenewalDate,
		&sub.UserID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) collect(rows pgx.Rows) ([]*domain.Subscription, error) {
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// CreateSubscription inserts a new subscription record.
func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `
        INSERT INTO subscriptions (id, name, price, currency, frequency, category, payment_method, status, start_date, renewal_date, user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		sub.ID,
		sub.Name,
		sub.Price,
		sub.Currency,
		sub.Frequency,
		sub.Category,
		sub.PaymentMethod,
		sub.Status,
		sub.StartDate,
		sub.RenewalDate,
		sub.UserID,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
}

// GetSubscriptionByID retrieves a subscription by primary key.
func (r *SubscriptionRepository) GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// UpdateSubscription persists all mutable fields of a subscription.
func (r *SubscriptionRepository) UpdateSubscription(ctx context.Context, sub *domain.Subscription) error {
	query := `
        UPDATE subscriptions
        SET name = $2, price = $3, currency = $4, frequency = $5, category = $6,
            payment_method = $7, status = $8, start_date = $9, renewal_date = $10,
            updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		sub.ID,
		sub.Name,
		sub.Price,
		sub.Currency,
		sub.Frequency,
		sub.Category,
		sub.PaymentMethod,
		sub.Status,
		sub.StartDate,
		sub.RenewalDate,
	).Scan(&sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

// UpdateSubscriptionStatus changes only the status of a subscription.
func (r *SubscriptionRepository) UpdateSubscriptionStatus(ctx context.Context, id string, status domain.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// DeleteSubscription removes a subscription record. The wakeup row, if any,
// cascades.
func (r *SubscriptionRepository) DeleteSubscription(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ListSubscriptions returns every subscription, newest first.
func (r *SubscriptionRepository) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListSubscriptionsByUser returns all subscriptions owned by a user.
func (r *SubscriptionRepository) ListSubscriptionsByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 ORDER BY renewal_date ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListUpcomingRenewals returns a user's active subscriptions whose renewal
// date falls inside [from, to].
func (r *SubscriptionRepository) ListUpcomingRenewals(ctx context.Context, userID string, from, to time.Time) ([]*domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE user_id = $1 AND status = 'active' AND renewal_date BETWEEN $2 AND $3
        ORDER BY renewal_date ASC
    `
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListActiveWithRenewalBetween returns every active subscription, regardless
// of owner, renewing inside [from, to]. The daily catch-up sweep feeds on
// this.
func (r *SubscriptionRepository) ListActiveWithRenewalBetween(ctx context.Context, from, to time.Time) ([]*domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE status = 'active' AND renewal_date BETWEEN $1 AND $2
        ORDER BY renewal_date ASC
    `
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}
