package service

import (
	"context"
	"errors"

	"srida/internal/authz"
	serviceserrors "srida/internal/services/errors"
	servicesrepo "srida/internal/services/repository"
	wishlisterrors "srida/internal/wishlist/errors"
	"srida/internal/wishlist/repository"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/model"
)

type WishlistService interface {
	Get(ctx context.Context, id identity.Identity) (*model.Wishlist, error)
	Add(ctx context.Context, id identity.Identity, serviceID string) (*model.Wishlist, error)
	Remove(ctx context.Context, id identity.Identity, serviceID string) (*model.Wishlist, error)
	Clear(ctx context.Context, id identity.Identity) error
}

type wishlistService struct {
	repo     repository.WishlistRepository
	services servicesrepo.ServiceRepository
	cfg      *config.Config
}

func NewWishlistService(
	repo repository.WishlistRepository,
	services servicesrepo.ServiceRepository,
	cfg *config.Config,
) WishlistService {
	return &wishlistService{
		repo:     repo,
		services: services,
		cfg:      cfg,
	}
}

// Get returns the caller's wishlist. A buyer who never favorited
// anything gets an empty wishlist, not NotFound; the document is only
// materialized by the first add.
func (s *wishlistService) Get(ctx context.Context, id identity.Identity) (*model.Wishlist, error) {
	if err := authz.Authorize(id, authz.ActionReadWishlist, authz.WishlistResource{BuyerID: id.UserID}); err != nil {
		return nil, err
	}

	wishlist, err := s.load(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, wishlist)
	return wishlist, nil
}

func (s *wishlistService) Add(ctx context.Context, id identity.Identity, serviceID string) (*model.Wishlist, error) {
	if err := authz.Authorize(id, authz.ActionModifyWishlist, authz.WishlistResource{BuyerID: id.UserID}); err != nil {
		return nil, err
	}

	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	// The favorited service must exist; a dangling id never enters the
	// wishlist.
	if _, err := s.services.FindByID(ctx, serviceID); err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", serviceID)
		}
		if errors.Is(err, serviceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		return nil, apperrors.StoreUnavailable("find service", err)
	}

	if err := s.repo.AddService(ctx, id.UserID, serviceID); err != nil {
		if errors.Is(err, wishlisterrors.ErrDuplicate) {
			return nil, apperrors.AlreadyInWishlist(serviceID)
		}
		s.cfg.Log.Error("Failed to add service to wishlist", "buyer_id", id.UserID, "service_id", serviceID, "error", err)
		return nil, apperrors.StoreUnavailable("add to wishlist", err)
	}

	s.cfg.Log.Info("Service added to wishlist", "buyer_id", id.UserID, "service_id", serviceID)

	wishlist, err := s.load(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, wishlist)
	return wishlist, nil
}

// Remove is idempotent: removing a service that is not in the wishlist
// succeeds and returns the unchanged wishlist.
func (s *wishlistService) Remove(ctx context.Context, id identity.Identity, serviceID string) (*model.Wishlist, error) {
	if err := authz.Authorize(id, authz.ActionModifyWishlist, authz.WishlistResource{BuyerID: id.UserID}); err != nil {
		return nil, err
	}

	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	if err := s.repo.RemoveService(ctx, id.UserID, serviceID); err != nil {
		s.cfg.Log.Error("Failed to remove service from wishlist", "buyer_id", id.UserID, "service_id", serviceID, "error", err)
		return nil, apperrors.StoreUnavailable("remove from wishlist", err)
	}

	s.cfg.Log.Info("Service removed from wishlist", "buyer_id", id.UserID, "service_id", serviceID)

	wishlist, err := s.load(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, wishlist)
	return wishlist, nil
}

func (s *wishlistService) Clear(ctx context.Context, id identity.Identity) error {
	if err := authz.Authorize(id, authz.ActionModifyWishlist, authz.WishlistResource{BuyerID: id.UserID}); err != nil {
		return err
	}

	if err := s.repo.Clear(ctx, id.UserID); err != nil {
		s.cfg.Log.Error("Failed to clear wishlist", "buyer_id", id.UserID, "error", err)
		return apperrors.StoreUnavailable("clear wishlist", err)
	}

	s.cfg.Log.Info("Wishlist cleared", "buyer_id", id.UserID)
	return nil
}

func (s *wishlistService) load(ctx context.Context, buyerID string) (*model.Wishlist, error) {
	wishlist, err := s.repo.FindByBuyer(ctx, buyerID)
	if err != nil {
		if errors.Is(err, wishlisterrors.ErrNotFound) {
			return &model.Wishlist{BuyerID: buyerID, Services: []model.WishlistEntry{}}, nil
		}
		return nil, apperrors.StoreUnavailable("find wishlist", err)
	}
	if wishlist.Services == nil {
		wishlist.Services = []model.WishlistEntry{}
	}
	return wishlist, nil
}

func (s *wishlistService) populate(ctx context.Context, wishlist *model.Wishlist) {
	for i := range wishlist.Services {
		service, err := s.services.FindByID(ctx, wishlist.Services[i].ServiceID)
		if err != nil {
			continue
		}
		wishlist.Services[i].Service = service.Summary()
	}
}
