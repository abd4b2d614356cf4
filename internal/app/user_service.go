/**
 * @description
 * User management: listing with filters and pagination, lookup, and the
 * role-gated create/update/delete operations. Role escalation rules: only
 * an admin may grant the admin role or change another user's roles.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

// ErrAdminRoleRequired is returned when a non-admin tries to grant or
// change roles beyond what the rules allow.
var ErrAdminRoleRequired = errors.New("only admin can assign or change roles")

// UserStore is the slice of the user repository the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, params store.ListUsersParams) ([]*domain.User, int, error)
}

// UserService implements user management.
type UserService struct {
	users  UserStore
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users UserStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UserPage is one page of a filtered user listing.
type UserPage struct {
	Users []*domain.User `json:"users"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Pages int            `json:"pages"`
}

// List returns a page of users matching the filter.
func (s *UserService) List(ctx context.Context, params store.ListUsersParams) (*UserPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}
	users, total, err := s.users.ListUsers(ctx, params)
	if err != nil {
		return nil, err
	}
	pages := (total + params.Limit - 1) / params.Limit
	return &UserPage{Users: users, Total: total, Page: params.Page, Limit: params.Limit, Pages: pages}, nil
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// CreateInput carries the fields for an admin/manager-created account.
// Accounts created this way are active immediately; no activation email.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Roles    []domain.Role
}

// Create adds a user on behalf of actor.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input CreateInput) (*domain.User, error) {
	if err := domain.ValidateUserInput(input.Name, input.Email, input.Password); err != nil {
		return nil, err
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}
	if err := domain.ValidateRoles(roles); err != nil {
		return nil, err
	}
	if containsRole(roles, domain.RoleAdmin) && !actor.HasRole(domain.RoleAdmin) {
		return nil, ErrAdminRoleRequired
	}

	email := domain.NormalizeEmail(input.Email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, store.ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", user.ID, "by", actor.ID)
	return user, nil
}

// UpdateInput carries optional field changes; nil means "leave unchanged".
type UpdateInput struct {
	Name  *string
	Email *string
	Roles []domain.Role
}

// Update applies changes to a user on behalf of actor.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, input UpdateInput) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if l := len(*input.Name); l < 2 || l > 50 {
			return nil, domain.ErrInvalidUserName
		}
		user.Name = *input.Name
	}

	if input.Email != nil {
		email := domain.NormalizeEmail(*input.Email)
		if existing, err := s.users.GetUserByEmail(ctx, email); err == nil && existing.ID != id {
			return nil, store.ErrEmailTaken
		} else if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		user.Email = email
	}

	if input.Roles != nil {
		if !actor.HasRole(domain.RoleAdmin) {
			return nil, ErrAdminRoleRequired
		}
		if err := domain.ValidateRoles(input.Roles); err != nil {
			return nil, err
		}
		user.Roles = input.Roles
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user and, via cascade, their subscriptions.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func containsRole(roles []domain.Role, want domain.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
