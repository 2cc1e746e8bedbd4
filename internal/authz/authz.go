// Package authz decides whether an identity may act on a resource.
// It is a pure decision layer: no I/O, no partial effects. Every
// handler consults it before any mutation is attempted.
package authz

import (
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
)

type Action string

const (
	ActionCreateService Action = "service.create"
	ActionUpdateService Action = "service.update"
	ActionDeleteService Action = "service.delete"
	ActionListOwn       Action = "service.list-own"

	ActionCreateBooking     Action = "booking.create"
	ActionReadBooking       Action = "booking.read"
	ActionSetBookingStatus  Action = "booking.set-status"
	ActionCancelBooking     Action = "booking.cancel"
	ActionListBuyerBooking  Action = "booking.list-buyer"
	ActionListSellerBooking Action = "booking.list-seller"

	ActionSendMessage Action = "message.send"
	ActionReadMessage Action = "message.read"

	ActionReadWishlist   Action = "wishlist.read"
	ActionModifyWishlist Action = "wishlist.modify"

	ActionAdminDashboard    Action = "admin.dashboard"
	ActionAdminListUsers    Action = "admin.list-users"
	ActionAdminReadUser     Action = "admin.read-user"
	ActionAdminVerifyUser   Action = "admin.verify-user"
	ActionAdminDeleteUser   Action = "admin.delete-user"
	ActionAdminListServices Action = "admin.list-services"
	ActionAdminListBookings Action = "admin.list-bookings"
)

// requiredRoles is the role gate: an identity whose role is absent
// from an action's set is denied before ownership is even considered.
var requiredRoles = map[Action][]identity.Role{
	ActionCreateService: {identity.RoleSeller},
	ActionUpdateService: {identity.RoleSeller},
	ActionDeleteService: {identity.RoleSeller, identity.RoleAdmin},
	ActionListOwn:       {identity.RoleSeller},

	ActionCreateBooking:     {identity.RoleBuyer},
	ActionReadBooking:       {identity.RoleBuyer, identity.RoleSeller, identity.RoleAdmin},
	ActionSetBookingStatus:  {identity.RoleSeller},
	ActionCancelBooking:     {identity.RoleBuyer},
	ActionListBuyerBooking:  {identity.RoleBuyer},
	ActionListSellerBooking: {identity.RoleSeller},

	ActionSendMessage: {identity.RoleBuyer, identity.RoleSeller, identity.RoleAdmin},
	ActionReadMessage: {identity.RoleBuyer, identity.RoleSeller, identity.RoleAdmin},

	ActionReadWishlist:   {identity.RoleBuyer},
	ActionModifyWishlist: {identity.RoleBuyer},

	ActionAdminDashboard:    {identity.RoleAdmin},
	ActionAdminListUsers:    {identity.RoleAdmin},
	ActionAdminReadUser:     {identity.RoleAdmin},
	ActionAdminVerifyUser:   {identity.RoleAdmin},
	ActionAdminDeleteUser:   {identity.RoleAdmin},
	ActionAdminListServices: {identity.RoleAdmin},
	ActionAdminListBookings: {identity.RoleAdmin},
}

// adminOverridable lists the actions where an admin bypasses the
// ownership and participant gates. Only reads and deletes: creates and
// status transitions stay with the buyer/seller they belong to.
var adminOverridable = map[Action]bool{
	ActionDeleteService: true,
	ActionReadBooking:   true,
	ActionReadMessage:   true,
}

// Resource exposes the ownership and participation facts the guard
// needs about one entity instance. A nil Resource skips gates 2 and 3
// (collection-level actions).
type Resource interface {
	Owner(action Action) string
	Participants() []string
}

// ServiceResource: the owning seller is the sole mutator.
type ServiceResource struct {
	SellerID string
}

func (r ServiceResource) Owner(Action) string    { return r.SellerID }
func (r ServiceResource) Participants() []string { return nil }

// BookingResource: ownership depends on the action — the seller drives
// status, the buyer drives cancellation — and both are participants
// for reads.
type BookingResource struct {
	BuyerID  string
	SellerID string
}

func (r BookingResource) Owner(action Action) string {
	switch action {
	case ActionSetBookingStatus:
		return r.SellerID
	case ActionCancelBooking:
		return r.BuyerID
	default:
		return ""
	}
}

func (r BookingResource) Participants() []string {
	return []string{r.BuyerID, r.SellerID}
}

// MessageResource: no owner; sender and receiver are participants.
type MessageResource struct {
	SenderID   string
	ReceiverID string
}

func (r MessageResource) Owner(Action) string { return "" }

func (r MessageResource) Participants() []string {
	return []string{r.SenderID, r.ReceiverID}
}

// WishlistResource: the buyer owns every operation.
type WishlistResource struct {
	BuyerID string
}

func (r WishlistResource) Owner(Action) string    { return r.BuyerID }
func (r WishlistResource) Participants() []string { return nil }

// Authorize evaluates the gates in order: role, ownership,
// participation, admin override. It returns nil for Allow or an
// AppError carrying the denial reason.
func Authorize(id identity.Identity, action Action, resource Resource) error {
	roles, known := requiredRoles[action]
	if !known {
		return apperrors.Internal("unknown action", nil)
	}
	if !roleAllowed(id.Role, roles) {
		return apperrors.RoleMismatch("Your role cannot perform this action")
	}

	if resource == nil {
		return nil
	}

	if id.IsAdmin() && adminOverridable[action] {
		return nil
	}

	if owner := resource.Owner(action); owner != "" {
		if owner != id.UserID {
			return apperrors.NotOwner("You do not own this resource")
		}
		return nil
	}

	if participants := resource.Participants(); participants != nil {
		for _, p := range participants {
			if p == id.UserID {
				return nil
			}
		}
		return apperrors.NotParticipant("You are not a participant of this resource")
	}

	return nil
}

func roleAllowed(role identity.Role, allowed []identity.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
