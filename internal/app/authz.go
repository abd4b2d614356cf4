/**
 * @description
 * Declarative authorization. Each action maps to the role set allowed to
 * perform it on someone else's resource, plus a flag for whether the
 * resource owner may perform it on their own. One function evaluates the
 * table; handlers never hand-roll role checks.
 */
package app

import (
	"errors"

	"github.com/RoshisRai/Subscription-API/internal/domain"
)

// ErrForbidden is returned when the principal may not perform the action.
var ErrForbidden = errors.New("forbidden")

// Action names a protected operation.
type Action string

const (
	ActionListUsers  Action = "users:list"
	ActionGetUser    Action = "users:get"
	ActionCreateUser Action = "users:create"
	ActionUpdateUser Action = "users:update"
	ActionDeleteUser Action = "users:delete"

	ActionListSubscriptions     Action = "subscriptions:list"
	ActionGetSubscription       Action = "subscriptions:get"
	ActionUpdateSubscription    Action = "subscriptions:update"
	ActionCancelSubscription    Action = "subscriptions:cancel"
	ActionDeleteSubscription    Action = "subscriptions:delete"
	ActionListUserSubscriptions Action = "subscriptions:list-by-user"
)

type policy struct {
	roles       []domain.Role
	selfAllowed bool
}

var policies = map[Action]policy{
	ActionListUsers:  {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleSupport}},
	ActionGetUser:    {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleSupport}, selfAllowed: true},
	ActionCreateUser: {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager}},
	ActionUpdateUser: {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager}, selfAllowed: true},
	ActionDeleteUser: {roles: []domain.Role{domain.RoleAdmin}, selfAllowed: true},

	ActionListSubscriptions:     {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleSupport}},
	ActionGetSubscription:       {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleSupport}, selfAllowed: true},
	ActionUpdateSubscription:    {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager}, selfAllowed: true},
	ActionCancelSubscription:    {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager}, selfAllowed: true},
	ActionDeleteSubscription:    {roles: []domain.Role{domain.RoleAdmin}, selfAllowed: true},
	ActionListUserSubscriptions: {roles: []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleSupport}, selfAllowed: true},
}

// Authorize checks whether principal may perform action on the resource
// owned by ownerID. ownerID is empty for actions without a single owner.
func Authorize(principal *domain.User, action Action, ownerID string) error {
	if principal == nil {
		return ErrForbidden
	}
	p, ok := policies[action]
	if !ok {
		return ErrForbidden
	}
	if p.selfAllowed && ownerID != "" && ownerID == principal.ID {
		return nil
	}
	if principal.HasRole(p.roles...) {
		return nil
	}
	return ErrForbidden
}
