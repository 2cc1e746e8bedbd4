package authz

import (
	"testing"

	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
)

func buyer(id string) identity.Identity {
	return identity.Identity{UserID: id, Role: identity.RoleBuyer}
}

func seller(id string) identity.Identity {
	return identity.Identity{UserID: id, Role: identity.RoleSeller}
}

func admin(id string) identity.Identity {
	return identity.Identity{UserID: id, Role: identity.RoleAdmin}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if code == "" {
		if err != nil {
			t.Fatalf("expected allow, got %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected denial %s, got allow", code)
	}
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestAuthorize_RoleGate(t *testing.T) {
	tests := []struct {
		name     string
		identity identity.Identity
		action   Action
		wantCode string
	}{
		{"buyer cannot create service", buyer("u1"), ActionCreateService, apperrors.CodeRoleMismatch},
		{"seller can create service", seller("u1"), ActionCreateService, ""},
		{"admin cannot create service", admin("u1"), ActionCreateService, apperrors.CodeRoleMismatch},
		{"seller cannot create booking", seller("u1"), ActionCreateBooking, apperrors.CodeRoleMismatch},
		{"buyer can create booking", buyer("u1"), ActionCreateBooking, ""},
		{"admin cannot create booking", admin("u1"), ActionCreateBooking, apperrors.CodeRoleMismatch},
		{"buyer cannot open admin dashboard", buyer("u1"), ActionAdminDashboard, apperrors.CodeRoleMismatch},
		{"admin can open admin dashboard", admin("u1"), ActionAdminDashboard, ""},
		{"seller cannot touch wishlist", seller("u1"), ActionModifyWishlist, apperrors.CodeRoleMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, Authorize(tt.identity, tt.action, nil), tt.wantCode)
		})
	}
}

func TestAuthorize_OwnershipGate(t *testing.T) {
	service := ServiceResource{SellerID: "seller-1"}
	booking := BookingResource{BuyerID: "buyer-1", SellerID: "seller-1"}
	wishlist := WishlistResource{BuyerID: "buyer-1"}

	tests := []struct {
		name     string
		identity identity.Identity
		action   Action
		resource Resource
		wantCode string
	}{
		{"owning seller updates service", seller("seller-1"), ActionUpdateService, service, ""},
		{"other seller cannot update service", seller("seller-2"), ActionUpdateService, service, apperrors.CodeNotOwner},
		{"owning seller deletes service", seller("seller-1"), ActionDeleteService, service, ""},
		{"other seller cannot delete service", seller("seller-2"), ActionDeleteService, service, apperrors.CodeNotOwner},

		{"booking seller sets status", seller("seller-1"), ActionSetBookingStatus, booking, ""},
		{"other seller cannot set status", seller("seller-2"), ActionSetBookingStatus, booking, apperrors.CodeNotOwner},
		{"booking buyer cancels", buyer("buyer-1"), ActionCancelBooking, booking, ""},
		{"other buyer cannot cancel", buyer("buyer-2"), ActionCancelBooking, booking, apperrors.CodeNotOwner},

		{"owning buyer modifies wishlist", buyer("buyer-1"), ActionModifyWishlist, wishlist, ""},
		{"other buyer cannot modify wishlist", buyer("buyer-2"), ActionModifyWishlist, wishlist, apperrors.CodeNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, Authorize(tt.identity, tt.action, tt.resource), tt.wantCode)
		})
	}
}

func TestAuthorize_ParticipantGate(t *testing.T) {
	booking := BookingResource{BuyerID: "buyer-1", SellerID: "seller-1"}
	message := MessageResource{SenderID: "buyer-1", ReceiverID: "seller-1"}

	tests := []struct {
		name     string
		identity identity.Identity
		action   Action
		resource Resource
		wantCode string
	}{
		{"booking buyer reads booking", buyer("buyer-1"), ActionReadBooking, booking, ""},
		{"booking seller reads booking", seller("seller-1"), ActionReadBooking, booking, ""},
		{"stranger cannot read booking", buyer("buyer-2"), ActionReadBooking, booking, apperrors.CodeNotParticipant},

		{"sender reads message", buyer("buyer-1"), ActionReadMessage, message, ""},
		{"receiver reads message", seller("seller-1"), ActionReadMessage, message, ""},
		{"stranger cannot read message", seller("seller-2"), ActionReadMessage, message, apperrors.CodeNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, Authorize(tt.identity, tt.action, tt.resource), tt.wantCode)
		})
	}
}

func TestAuthorize_AdminOverride(t *testing.T) {
	service := ServiceResource{SellerID: "seller-1"}
	booking := BookingResource{BuyerID: "buyer-1", SellerID: "seller-1"}
	message := MessageResource{SenderID: "buyer-1", ReceiverID: "seller-1"}

	tests := []struct {
		name     string
		action   Action
		resource Resource
		wantCode string
	}{
		// Admin bypasses ownership/participation for reads and deletes.
		{"admin deletes any service", ActionDeleteService, service, ""},
		{"admin reads any booking", ActionReadBooking, booking, ""},
		{"admin reads any message", ActionReadMessage, message, ""},

		// Status transitions and cancellation stay role-gated: the
		// admin never acquires buyer or seller authority.
		{"admin cannot set booking status", ActionSetBookingStatus, booking, apperrors.CodeRoleMismatch},
		{"admin cannot cancel booking", ActionCancelBooking, booking, apperrors.CodeRoleMismatch},
		{"admin cannot update service", ActionUpdateService, service, apperrors.CodeRoleMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, Authorize(admin("root"), tt.action, tt.resource), tt.wantCode)
		})
	}
}

func TestAuthorize_UnknownAction(t *testing.T) {
	err := Authorize(buyer("u1"), Action("no.such.action"), nil)
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected internal error for unknown action, got %v", err)
	}
}
