package api

import (
	"context"

	"github.com/RoshisRai/Subscription-API/internal/app"
	"github.com/RoshisRai/Subscription-API/internal/domain"
	"github.com/RoshisRai/Subscription-API/internal/store"
)

// AuthService is the slice of the auth service the handlers consume.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Activate(ctx context.Context, token string) error
	ResendActivation(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, password string) (*domain.User, string, error)
}

// UserService is the slice of the user service the handlers consume.
type UserService interface {
	List(ctx context.Context, params store.ListUsersParams) (*app.UserPage, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, actor *domain.User, input app.CreateInput) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id string, input app.UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionService is the slice of the subscription service the handlers
// consume.
type SubscriptionService interface {
	Create(ctx context.Context, ownerID string, input app.SubscriptionInput) (*domain.Subscription, error)
	Update(ctx context.Context, id string, input app.SubscriptionInput) (*domain.Subscription, error)
	Cancel(ctx context.Context, id string) (*domain.Subscription, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Subscription, error)
	ListAll(ctx context.Context) ([]*domain.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error)
	UpcomingRenewals(ctx context.Context, userID string) ([]*domain.Subscription, error)
}
