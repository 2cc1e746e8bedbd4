package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	serviceserrors "srida/internal/services/errors"
	wishlisterrors "srida/internal/wishlist/errors"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/model"
	"srida/pkg/query"
)

const (
	buyerID   = "507f1f77bcf86cd799439031"
	serviceID = "507f1f77bcf86cd799439032"
)

type mockWishlistRepository struct {
	findByBuyerFunc   func(ctx context.Context, buyerID string) (*model.Wishlist, error)
	addServiceFunc    func(ctx context.Context, buyerID, serviceID string) error
	removeServiceFunc func(ctx context.Context, buyerID, serviceID string) error
	clearFunc         func(ctx context.Context, buyerID string) error
}

func (m *mockWishlistRepository) FindByBuyer(ctx context.Context, buyerID string) (*model.Wishlist, error) {
	if m.findByBuyerFunc != nil {
		return m.findByBuyerFunc(ctx, buyerID)
	}
	return nil, wishlisterrors.ErrNotFound
}

func (m *mockWishlistRepository) AddService(ctx context.Context, buyerID, serviceID string) error {
	if m.addServiceFunc != nil {
		return m.addServiceFunc(ctx, buyerID, serviceID)
	}
	return nil
}

func (m *mockWishlistRepository) RemoveService(ctx context.Context, buyerID, serviceID string) error {
	if m.removeServiceFunc != nil {
		return m.removeServiceFunc(ctx, buyerID, serviceID)
	}
	return nil
}

func (m *mockWishlistRepository) Clear(ctx context.Context, buyerID string) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx, buyerID)
	}
	return nil
}

type mockServiceRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Service, error)
}

func (m *mockServiceRepository) Create(ctx context.Context, service *model.Service) error { return nil }

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Service{ID: id, Name: "Grand Hall", Availability: true}, nil
}

func (m *mockServiceRepository) FindAll(ctx context.Context, filter bson.M, page query.Page) ([]*model.Service, error) {
	return []*model.Service{}, nil
}

func (m *mockServiceRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	return 0, nil
}

func (m *mockServiceRepository) Update(ctx context.Context, id string, set bson.M) error { return nil }
func (m *mockServiceRepository) Delete(ctx context.Context, id string) error             { return nil }

func (m *mockServiceRepository) DeleteBySeller(ctx context.Context, sellerID string) (int64, error) {
	return 0, nil
}

func (m *mockServiceRepository) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	return 0, nil
}

func newTestService(repo *mockWishlistRepository, services *mockServiceRepository) *wishlistService {
	cfg := &config.Config{
		Log:          logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return &wishlistService{
		repo:     repo,
		services: services,
		cfg:      cfg,
	}
}

func buyer() identity.Identity {
	return identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}
}

func TestGet_UnmaterializedWishlistIsEmpty(t *testing.T) {
	svc := newTestService(&mockWishlistRepository{}, &mockServiceRepository{})

	wishlist, err := svc.Get(context.Background(), buyer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wishlist.BuyerID != buyerID {
		t.Errorf("expected buyer %s, got %s", buyerID, wishlist.BuyerID)
	}
	if wishlist.Services == nil || len(wishlist.Services) != 0 {
		t.Errorf("expected empty services slice, got %v", wishlist.Services)
	}
}

func TestGet_SellerRejected(t *testing.T) {
	svc := newTestService(&mockWishlistRepository{}, &mockServiceRepository{})

	_, err := svc.Get(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleSeller})
	if !apperrors.HasCode(err, apperrors.CodeRoleMismatch) {
		t.Fatalf("expected ROLE_MISMATCH, got %v", err)
	}
}

func TestAdd_DuplicateRejected(t *testing.T) {
	repo := &mockWishlistRepository{
		addServiceFunc: func(ctx context.Context, buyerID, serviceID string) error {
			return wishlisterrors.ErrDuplicate
		},
	}
	svc := newTestService(repo, &mockServiceRepository{})

	_, err := svc.Add(context.Background(), buyer(), serviceID)
	if !apperrors.HasCode(err, apperrors.CodeAlreadyInWishlist) {
		t.Fatalf("expected ALREADY_IN_WISHLIST, got %v", err)
	}
}

func TestAdd_DanglingServiceRejected(t *testing.T) {
	services := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return nil, serviceserrors.ErrNotFound
		},
	}
	added := false
	repo := &mockWishlistRepository{
		addServiceFunc: func(ctx context.Context, buyerID, serviceID string) error {
			added = true
			return nil
		},
	}
	svc := newTestService(repo, services)

	_, err := svc.Add(context.Background(), buyer(), serviceID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if added {
		t.Error("dangling service id must not enter the wishlist")
	}
}

func TestAdd_ReturnsPopulatedWishlist(t *testing.T) {
	repo := &mockWishlistRepository{
		findByBuyerFunc: func(ctx context.Context, buyerID string) (*model.Wishlist, error) {
			return &model.Wishlist{
				BuyerID:  buyerID,
				Services: []model.WishlistEntry{{ServiceID: serviceID, AddedAt: time.Now()}},
			}, nil
		},
	}
	svc := newTestService(repo, &mockServiceRepository{})

	wishlist, err := svc.Add(context.Background(), buyer(), serviceID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wishlist.Services) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(wishlist.Services))
	}
	if wishlist.Services[0].Service == nil || wishlist.Services[0].Service.Name != "Grand Hall" {
		t.Errorf("expected resolved service summary, got %v", wishlist.Services[0].Service)
	}
}

func TestRemove_IsIdempotent(t *testing.T) {
	removeCalls := 0
	repo := &mockWishlistRepository{
		removeServiceFunc: func(ctx context.Context, buyerID, serviceID string) error {
			removeCalls++
			return nil
		},
	}
	svc := newTestService(repo, &mockServiceRepository{})

	for i := 0; i < 2; i++ {
		wishlist, err := svc.Remove(context.Background(), buyer(), serviceID)
		if err != nil {
			t.Fatalf("remove %d failed: %v", i+1, err)
		}
		if len(wishlist.Services) != 0 {
			t.Errorf("expected empty wishlist, got %v", wishlist.Services)
		}
	}
	if removeCalls != 2 {
		t.Errorf("expected 2 remove calls, got %d", removeCalls)
	}
}

func TestAdd_EmptyServiceID(t *testing.T) {
	svc := newTestService(&mockWishlistRepository{}, &mockServiceRepository{})

	_, err := svc.Add(context.Background(), buyer(), "")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestClear_BuyerOnly(t *testing.T) {
	cleared := false
	repo := &mockWishlistRepository{
		clearFunc: func(ctx context.Context, buyerID string) error {
			cleared = true
			return nil
		},
	}
	svc := newTestService(repo, &mockServiceRepository{})

	if err := svc.Clear(context.Background(), buyer()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cleared {
		t.Error("expected repository clear call")
	}

	err := svc.Clear(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleAdmin})
	if !apperrors.HasCode(err, apperrors.CodeRoleMismatch) {
		t.Fatalf("expected ROLE_MISMATCH for admin, got %v", err)
	}
}
