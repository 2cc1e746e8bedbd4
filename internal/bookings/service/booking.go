package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"srida/internal/authz"
	bookingserrors "srida/internal/bookings/errors"
	"srida/internal/bookings/events"
	"srida/internal/bookings/repository"
	"srida/internal/bookings/validator"
	serviceserrors "srida/internal/services/errors"
	servicesrepo "srida/internal/services/repository"
	usersvc "srida/internal/users/service"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/model"
	"srida/pkg/query"
	"srida/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, id identity.Identity, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id identity.Identity, bookingID string) (*model.Booking, error)
	ListForBuyer(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error)
	ListForSeller(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error)
	ListAll(ctx context.Context, status string, page query.Page) ([]*model.Booking, int64, error)
	SetStatus(ctx context.Context, id identity.Identity, bookingID string, target model.BookingStatus) (*model.Booking, error)
	Cancel(ctx context.Context, id identity.Identity, bookingID string, reason string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	services  servicesrepo.ServiceRepository
	users     usersvc.UserService
	events    events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	services servicesrepo.ServiceRepository,
	users usersvc.UserService,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		services:  services,
		users:     users,
		events:    publisher,
		validator: validator,
		cfg:       cfg,
	}
}

// Create books a service for the calling buyer. The seller id is
// copied from the service inside a transaction, so the counterparty
// binding cannot observe a mid-flight ownership change.
func (s *bookingService) Create(ctx context.Context, id identity.Identity, req *model.BookingRequest) (*model.Booking, error) {
	if err := authz.Authorize(id, authz.ActionCreateBooking, nil); err != nil {
		return nil, err
	}

	req.EventType = sanitizer.TrimAndNormalize(req.EventType)
	req.SpecialRequirements = sanitizer.TrimAndNormalize(req.SpecialRequirements)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "buyer_id", id.UserID, "error", err)
		return nil, apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}

	booking := &model.Booking{
		BuyerID:             id.UserID,
		ServiceID:           req.ServiceID,
		EventDate:           req.EventDate,
		EventType:           req.EventType,
		Venue:               req.Venue,
		Duration:            req.Duration,
		NumberOfGuests:      req.NumberOfGuests,
		TotalAmount:         req.TotalAmount,
		Status:              model.StatusPending,
		PaymentStatus:       model.PaymentPending,
		SpecialRequirements: req.SpecialRequirements,
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		service, err := s.services.FindByID(sessCtx, req.ServiceID)
		if err != nil {
			if errors.Is(err, serviceserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Service", req.ServiceID)
			}
			if errors.Is(err, serviceserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid service ID format")
			}
			return apperrors.StoreUnavailable("find service", err)
		}
		if !service.Availability {
			return apperrors.Validation("Service is not available for booking", map[string]any{
				"service_id": req.ServiceID,
			})
		}

		booking.SellerID = service.SellerID
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.StoreUnavailable("create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "buyer_id", id.UserID, "service_id", req.ServiceID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"buyer_id", booking.BuyerID,
		"seller_id", booking.SellerID,
		"service_id", booking.ServiceID,
	)
	s.events.BookingCreated(ctx, booking)

	s.populate(ctx, []*model.Booking{booking})
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id identity.Identity, bookingID string) (*model.Booking, error) {
	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := authz.Authorize(id, authz.ActionReadBooking, authz.BookingResource{
		BuyerID:  booking.BuyerID,
		SellerID: booking.SellerID,
	}); err != nil {
		return nil, err
	}

	s.populate(ctx, []*model.Booking{booking})
	return booking, nil
}

func (s *bookingService) ListForBuyer(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error) {
	if err := authz.Authorize(id, authz.ActionListBuyerBooking, nil); err != nil {
		return nil, 0, err
	}

	filter, err := listFilter("buyer_id", id.UserID, status)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filter, page)
}

func (s *bookingService) ListForSeller(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error) {
	if err := authz.Authorize(id, authz.ActionListSellerBooking, nil); err != nil {
		return nil, 0, err
	}

	filter, err := listFilter("seller_id", id.UserID, status)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filter, page)
}

func (s *bookingService) ListAll(ctx context.Context, status string, page query.Page) ([]*model.Booking, int64, error) {
	filter, err := listFilter("", "", status)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filter, page)
}

// SetStatus is the seller-side transition. Any target is accepted
// except cancelled, which belongs to the buyer's cancel operation; the
// store-level guard rejects the write once the booking is terminal.
func (s *bookingService) SetStatus(ctx context.Context, id identity.Identity, bookingID string, target model.BookingStatus) (*model.Booking, error) {
	if target == model.StatusCancelled {
		return nil, apperrors.InvalidTransition("Use the cancel operation to cancel a booking")
	}

	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := authz.Authorize(id, authz.ActionSetBookingStatus, authz.BookingResource{
		BuyerID:  booking.BuyerID,
		SellerID: booking.SellerID,
	}); err != nil {
		return nil, err
	}

	if booking.Status.Terminal() {
		return nil, apperrors.InvalidTransition("Booking is already " + string(booking.Status))
	}

	from := booking.Status
	if err := s.repo.SetStatus(ctx, bookingID, target); err != nil {
		return nil, s.transitionError(ctx, bookingID, err, "update booking status")
	}

	booking.Status = target
	s.cfg.Log.Info("Booking status updated",
		"id", bookingID,
		"from", from,
		"to", target,
		"seller_id", id.UserID,
	)
	s.events.StatusChanged(ctx, booking, from, target)

	s.populate(ctx, []*model.Booking{booking})
	return booking, nil
}

// Cancel is the buyer-side terminal transition. The reason is
// mandatory and stored verbatim on the booking.
func (s *bookingService) Cancel(ctx context.Context, id identity.Identity, bookingID string, reason string) (*model.Booking, error) {
	reason = sanitizer.TrimAndNormalize(reason)
	if reason == "" {
		return nil, apperrors.Validation("cancellation_reason is required", nil)
	}

	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := authz.Authorize(id, authz.ActionCancelBooking, authz.BookingResource{
		BuyerID:  booking.BuyerID,
		SellerID: booking.SellerID,
	}); err != nil {
		return nil, err
	}

	if booking.Status.Terminal() {
		return nil, apperrors.InvalidTransition("Booking is already " + string(booking.Status))
	}

	from := booking.Status
	if err := s.repo.Cancel(ctx, bookingID, reason); err != nil {
		return nil, s.transitionError(ctx, bookingID, err, "cancel booking")
	}

	booking.Status = model.StatusCancelled
	booking.CancellationReason = reason
	s.cfg.Log.Info("Booking cancelled", "id", bookingID, "buyer_id", id.UserID, "from", from)
	s.events.Cancelled(ctx, booking, from, reason)

	s.populate(ctx, []*model.Booking{booking})
	return booking, nil
}

// transitionError disambiguates a zero-match conditional write: the
// booking either disappeared or raced into a terminal status.
func (s *bookingService) transitionError(ctx context.Context, bookingID string, err error, operation string) error {
	if errors.Is(err, bookingserrors.ErrStaleStatus) {
		current, findErr := s.repo.FindByID(ctx, bookingID)
		if findErr != nil {
			if errors.Is(findErr, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", bookingID)
			}
			return apperrors.StoreUnavailable(operation, findErr)
		}
		return apperrors.InvalidTransition("Booking is already " + string(current.Status))
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.StoreUnavailable(operation, err)
}

func (s *bookingService) find(ctx context.Context, bookingID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.StoreUnavailable("find booking", err)
	}
	return booking, nil
}

func (s *bookingService) list(ctx context.Context, filter bson.M, page query.Page) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.StoreUnavailable("count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, page)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.StoreUnavailable("list bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.populate(ctx, bookings)
	return bookings, count, nil
}

// populate resolves service, buyer and seller summaries on read.
// Failures degrade to bare ids rather than erroring the listing.
func (s *bookingService) populate(ctx context.Context, bookings []*model.Booking) {
	userIDs := make([]string, 0, len(bookings)*2)
	for _, b := range bookings {
		userIDs = append(userIDs, b.BuyerID, b.SellerID)
	}
	summaries, err := s.users.Summaries(ctx, userIDs)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve booking users", "error", err)
	} else {
		for _, b := range bookings {
			b.Buyer = summaries[b.BuyerID]
			b.Seller = summaries[b.SellerID]
		}
	}

	for _, b := range bookings {
		service, err := s.services.FindByID(ctx, b.ServiceID)
		if err != nil {
			continue
		}
		b.Service = service.Summary()
	}
}

func listFilter(ownerField, ownerID, status string) (bson.M, error) {
	if status != "" {
		if _, ok := model.ParseBookingStatus(status); !ok {
			return nil, apperrors.InvalidInput("Invalid status filter: " + status)
		}
	}
	return query.New().
		Equal(ownerField, ownerID).
		Equal("status", status).
		Build(), nil
}
