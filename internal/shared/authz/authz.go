// Package authz centralises the ownership and role checks of the marketplace.
package authz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
)

// Role is a coarse capability granted to a user account.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleSeller    Role = "seller"
	RoleCaretaker Role = "caretaker"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleCustomer, RoleSeller, RoleCaretaker, RoleAdmin:
		return role, true
	}
	return "", false
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID  string
	Roles   []Role
	TokenID string
}

// Anonymous is the zero principal used for public reads.
var Anonymous = Principal{}

// Authenticated reports whether the principal identifies a user.
func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

// HasRole reports whether the principal was granted role.
func (p Principal) HasRole(role Role) bool {
	return slices.Contains(p.Roles, role)
}

// IsAdmin reports whether the principal may override ownership rules.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// Action names an operation subject to authorization.
type Action string

const (
	ActionViewOwnerListings Action = "catalog.view_owner_listings"
	ActionUpdatePet         Action = "catalog.update_pet"
	ActionDeletePet         Action = "catalog.delete_pet"
	ActionViewOrder         Action = "sales.view_order"
	ActionCancelOrder       Action = "sales.cancel_order"
	ActionUpdateOrderStatus Action = "sales.update_order_status"
	ActionUpdateBooking     Action = "caretaking.update_booking_status"
	ActionAddCareLog        Action = "caretaking.add_log"
	ActionViewCareLogs      Action = "caretaking.view_logs"
	ActionDeletePost        Action = "community.delete_post"
)

// Resource identifies the entity an action targets and the users owning it.
type Resource struct {
	Kind   string
	ID     any
	Owners []string
}

type policy struct {
	owner bool
	admin bool
}

var policies = map[Action]policy{
	ActionViewOwnerListings: {owner: true, admin: true},
	ActionUpdatePet:         {owner: true},
	ActionDeletePet:         {owner: true},
	ActionViewOrder:         {owner: true, admin: true},
	ActionCancelOrder:       {owner: true, admin: true},
	ActionUpdateOrderStatus: {admin: true},
	ActionUpdateBooking:     {owner: true},
	ActionAddCareLog:        {owner: true},
	ActionViewCareLogs:      {owner: true, admin: true},
	ActionDeletePost:        {owner: true, admin: true},
}

// Authorize returns nil when principal may perform action on resource and an
// apperr.ErrForbidden otherwise. Unknown actions are always denied.
func Authorize(principal Principal, action Action, resource Resource) error {
	rule, ok := policies[action]
	if !ok {
		return apperr.Forbidden("unknown action %q", action)
	}
	if !principal.Authenticated() {
		return apperr.Forbidden("%s requires an authenticated user", action)
	}
	if rule.admin && principal.IsAdmin() {
		return nil
	}
	if rule.owner && slices.Contains(resource.Owners, principal.UserID) {
		return nil
	}
	return apperr.Forbidden("user %s may not perform %s on %s", principal.UserID, action, describe(resource))
}

// RequireUser fails when the principal is anonymous.
func RequireUser(principal Principal) error {
	if !principal.Authenticated() {
		return fmt.Errorf("%w: authentication required", apperr.ErrUnauthenticated)
	}
	return nil
}

func describe(r Resource) string {
	if r.ID == nil {
		return r.Kind
	}
	return fmt.Sprintf("%s %v", r.Kind, r.ID)
}
