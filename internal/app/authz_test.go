package app

import (
	"errors"
	"testing"

	"github.com/RoshisRai/Subscription-API/internal/domain"
)

func userWithRoles(id string, roles ...domain.Role) *domain.User {
	return &domain.User{ID: id, Roles: roles}
}

func TestAuthorize_RoleGatedActions(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.User
		action    Action
		ownerID   string
		allowed   bool
	}{
		{"admin lists users", userWithRoles("u1", domain.RoleAdmin), ActionListUsers, "", true},
		{"support lists users", userWithRoles("u1", domain.RoleSupport), ActionListUsers, "", true},
		{"plain user cannot list users", userWithRoles("u1", domain.RoleUser), ActionListUsers, "", false},
		{"manager creates user", userWithRoles("u1", domain.RoleManager), ActionCreateUser, "", true},
		{"support cannot create user", userWithRoles("u1", domain.RoleSupport), ActionCreateUser, "", false},
		{"user reads own record", userWithRoles("u1", domain.RoleUser), ActionGetUser, "u1", true},
		{"user cannot read another record", userWithRoles("u1", domain.RoleUser), ActionGetUser, "u2", false},
		{"support reads any record", userWithRoles("u1", domain.RoleSupport), ActionGetUser, "u2", true},
		{"user deletes own account", userWithRoles("u1", domain.RoleUser), ActionDeleteUser, "u1", true},
		{"manager cannot delete another account", userWithRoles("u1", domain.RoleManager), ActionDeleteUser, "u2", false},
		{"admin deletes any account", userWithRoles("u1", domain.RoleAdmin), ActionDeleteUser, "u2", true},
		{"owner cancels own subscription", userWithRoles("u1", domain.RoleUser), ActionCancelSubscription, "u1", true},
		{"stranger cannot cancel subscription", userWithRoles("u1", domain.RoleUser), ActionCancelSubscription, "u2", false},
		{"owner deletes own subscription", userWithRoles("u1", domain.RoleUser), ActionDeleteSubscription, "u1", true},
		{"manager cannot delete another's subscription", userWithRoles("u1", domain.RoleManager), ActionDeleteSubscription, "u2", false},
		{"support lists another's subscriptions", userWithRoles("u1", domain.RoleSupport), ActionListUserSubscriptions, "u2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.action, tt.ownerID)
			if tt.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestAuthorize_NilPrincipalAndUnknownAction(t *testing.T) {
	if err := Authorize(nil, ActionListUsers, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for nil principal, got %v", err)
	}
	if err := Authorize(userWithRoles("u1", domain.RoleAdmin), Action("nope"), ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown action, got %v", err)
	}
}
