/**
 * @description
 * This file implements the data access layer for user accounts. It contains
 * all the SQL queries and logic for interacting with the users table.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RoshisRai/Subscription-API/internal/domain"
)

const userColumns = `id, name, email, password_hash, roles, is_active, activation_token, activation_expires, created_at, updated_at`

// UserRepository handles database operations for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user  domain.User
		roles []string
		token *string
	)
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&roles,
		&user.IsActive,
		&token,
		&user.ActivationExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		user.Roles = append(user.Roles, domain.Role(r))
	}
	if token != nil {
		user.ActivationToken = *token
	}
	return &user, nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// CreateUser inserts a new user record.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (id, name, email, password_hash, roles, is_active, activation_token, activation_expires)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
        RETURNING created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		rolesToStrings(user.Roles),
		user.IsActive,
		user.ActivationToken,
		user.ActivationExpires,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetUserByID retrieves a user by primary key.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by normalized email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetPendingActivation finds the not-yet-active user holding the given
// activation token.
func (r *UserRepository) GetPendingActivation(ctx context.Context, email, token string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND activation_token = $2 AND is_active = FALSE`
	user, err := scanUser(r.db.QueryRow(ctx, query, email, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ActivateUser flips the account to active and clears the activation token.
func (r *UserRepository) ActivateUser(ctx context.Context, id string) error {
	query := `
        UPDATE users
        SET is_active = TRUE, activation_token = NULL, activation_expires = NULL, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateUser persists name/email/roles changes for a user.
func (r *UserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
        UPDATE users
        SET name = $2, email = $3, roles = $4, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		rolesToStrings(user.Roles),
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// DeleteUser removes a user record. Owned subscriptions cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsersParams carries pagination, filter and sort options for ListUsers.
type ListUsersParams struct {
	Page      int
	Limit     int
	Roles     []domain.Role
	IsActive  *bool
	Name      string
	Email     string
	SortField string
	SortAsc   bool
}

// Sortable columns; anything else falls back to created_at.
var userSortFields = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ListUsers returns one page of users matching the filters plus the total
// match count.
func (r *UserRepository) ListUsers(ctx context.Context, params ListUsersParams) ([]*domain.User, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(params.Roles) > 0 {
		where = append(where, fmt.Sprintf("roles && %s", arg(rolesToStrings(params.Roles))))
	}
	if params.IsActive != nil {
		where = append(where, fmt.Sprintf("is_active = %s", arg(*params.IsActive)))
	}
	if params.Name != "" {
		where = append(where, fmt.Sprintf("name ILIKE %s", arg("%"+params.Name+"%")))
	}
	if params.Email != "" {
		where = append(where, fmt.Sprintf("email ILIKE %s", arg("%"+params.Email+"%")))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := userSortFields[params.SortField]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "DESC"
	if params.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM users%s ORDER BY %s %s LIMIT %s OFFSET %s`,
		userColumns, clause, sortColumn, direction,
		arg(params.Limit), arg((params.Page-1)*params.Limit),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// TouchActivation stores a fresh activation token for a user, used when a
// new activation email is requested.
func (r *UserRepository) TouchActivation(ctx context.Context, id, token string, expires time.Time) error {
	query := `
        UPDATE users
        SET activation_token = $2, activation_expires = $3, updated_at = NOW()
        WHERE id = $1 AND is_active = FALSE
    `
	tag, err := r.db.Exec(ctx, query, id, token, expires)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
