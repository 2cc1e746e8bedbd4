package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"srida/internal/bookings/events"
	bookingserrors "srida/internal/bookings/errors"
	"srida/internal/bookings/validator"
	usersvc "srida/internal/users/service"
	"srida/pkg/config"
	mongotx "srida/pkg/db/mongo"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/model"
	"srida/pkg/query"
)

const (
	buyerID   = "507f1f77bcf86cd799439011"
	sellerID  = "507f1f77bcf86cd799439012"
	serviceID = "507f1f77bcf86cd799439013"
	bookingID = "507f1f77bcf86cd799439014"
	otherID   = "507f1f77bcf86cd799439099"
)

type mockBookingRepository struct {
	createFunc    func(ctx context.Context, booking *model.Booking) error
	findByIDFunc  func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc   func(ctx context.Context, filter bson.M, page query.Page) ([]*model.Booking, error)
	countFunc     func(ctx context.Context, filter bson.M) (int64, error)
	setStatusFunc func(ctx context.Context, id string, to model.BookingStatus) error
	cancelFunc    func(ctx context.Context, id string, reason string) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = bookingID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter bson.M, page query.Page) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, page)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) SetStatus(ctx context.Context, id string, to model.BookingStatus) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, to)
	}
	return nil
}

func (m *mockBookingRepository) Cancel(ctx context.Context, id string, reason string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, reason)
	}
	return nil
}

func (m *mockBookingRepository) SumCompletedAmount(ctx context.Context) (float64, error) {
	return 0, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockServiceRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Service, error)
}

func (m *mockServiceRepository) Create(ctx context.Context, service *model.Service) error { return nil }

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Service{ID: serviceID, SellerID: sellerID, Availability: true}, nil
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

type mockUserService struct{}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Name: "Test User"}, nil
}

func (m *mockUserService) List(ctx context.Context, filter usersvc.ListFilter, page query.Page) ([]*model.User, int64, error) {
	return nil, 0, nil
}

func (m *mockUserService) SetVerified(ctx context.Context, id string, verified bool) error {
	return nil
}

func (m *mockUserService) Delete(ctx context.Context, id string) error { return nil }

func (m *mockUserService) Summaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	out := make(map[string]*model.UserSummary, len(ids))
	for _, id := range ids {
		out[id] = &model.UserSummary{ID: id, Name: "Test User"}
	}
	return out, nil
}

type recordingPublisher struct {
	created   []string
	changed   []string
	cancelled []string
}

func (p *recordingPublisher) BookingCreated(_ context.Context, b *model.Booking) {
	p.created = append(p.created, b.ID)
}

func (p *recordingPublisher) StatusChanged(_ context.Context, b *model.Booking, from, to model.BookingStatus) {
	p.changed = append(p.changed, string(from)+"->"+string(to))
}

func (p *recordingPublisher) Cancelled(_ context.Context, b *model.Booking, from model.BookingStatus, reason string) {
	p.cancelled = append(p.cancelled, reason)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:          logger.New(logger.Config{Level: "error", Format: logger.FormatJSON, Service: "test"}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockBookingRepository, services *mockServiceRepository, publisher events.Publisher) *bookingService {
	cfg := testConfig()
	return &bookingService{
		repo:      repo,
		services:  services,
		users:     &mockUserService{},
		events:    publisher,
		validator: validator.NewBookingValidator(cfg.Log),
		cfg:       cfg,
	}
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		ServiceID:      serviceID,
		EventDate:      time.Now().Add(30 * 24 * time.Hour),
		EventType:      "Wedding",
		Duration:       model.Duration{Value: 6, Unit: "hours"},
		NumberOfGuests: 150,
		TotalAmount:    25000,
	}
}

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:        bookingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ServiceID: serviceID,
		Status:    model.StatusPending,
	}
}

func TestCreate_SnapshotsSellerAndStartsPending(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestService(&mockBookingRepository{}, &mockServiceRepository{}, publisher)

	booking, err := svc.Create(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("expected status pending, got %s", booking.Status)
	}
	if booking.PaymentStatus != model.PaymentPending {
		t.Errorf("expected payment status pending, got %s", booking.PaymentStatus)
	}
	if booking.SellerID != sellerID {
		t.Errorf("expected seller snapshot %s, got %s", sellerID, booking.SellerID)
	}
	if booking.BuyerID != buyerID {
		t.Errorf("expected buyer %s, got %s", buyerID, booking.BuyerID)
	}
	if len(publisher.created) != 1 {
		t.Errorf("expected 1 created event, got %d", len(publisher.created))
	}
}

func TestCreate_SellerRoleRejected(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockServiceRepository{}, &recordingPublisher{})

	_, err := svc.Create(context.Background(), identity.Identity{UserID: sellerID, Role: identity.RoleSeller}, validRequest())
	if !apperrors.HasCode(err, apperrors.CodeRoleMismatch) {
		t.Fatalf("expected ROLE_MISMATCH, got %v", err)
	}
}

func TestCreate_UnavailableServiceRejected(t *testing.T) {
	services := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return &model.Service{ID: serviceID, SellerID: sellerID, Availability: false}, nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, services, &recordingPublisher{})

	_, err := svc.Create(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}, validRequest())
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSetStatus_SkippingStatesAllowed(t *testing.T) {
	// Pending straight to completed: the seller status-set is not
	// restricted to the immediate successor.
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newTestService(repo, &mockServiceRepository{}, publisher)

	booking, err := svc.SetStatus(context.Background(), identity.Identity{UserID: sellerID, Role: identity.RoleSeller}, bookingID, model.StatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusCompleted {
		t.Errorf("expected completed, got %s", booking.Status)
	}
	if len(publisher.changed) != 1 || publisher.changed[0] != "pending->completed" {
		t.Errorf("expected pending->completed event, got %v", publisher.changed)
	}
}

func TestSetStatus_CancelledTargetRejected(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockServiceRepository{}, &recordingPublisher{})

	_, err := svc.SetStatus(context.Background(), identity.Identity{UserID: sellerID, Role: identity.RoleSeller}, bookingID, model.StatusCancelled)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestSetStatus_NotOwnerRejected(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	svc := newTestService(repo, &mockServiceRepository{}, &recordingPublisher{})

	_, err := svc.SetStatus(context.Background(), identity.Identity{UserID: otherID, Role: identity.RoleSeller}, bookingID, model.StatusConfirmed)
	if !apperrors.HasCode(err, apperrors.CodeNotOwner) {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
}

func TestSetStatus_TerminalRejected(t *testing.T) {
	for _, status := range []model.BookingStatus{model.StatusCompleted, model.StatusCancelled} {
		repo := &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				b := pendingBooking()
				b.Status = status
				return b, nil
			},
		}
		svc := newTestService(repo, &mockServiceRepository{}, &recordingPublisher{})

		_, err := svc.SetStatus(context.Background(), identity.Identity{UserID: sellerID, Role: identity.RoleSeller}, bookingID, model.StatusConfirmed)
		if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
			t.Fatalf("status %s: expected INVALID_TRANSITION, got %v", status, err)
		}
	}
}

func TestSetStatus_ConcurrentTerminalRace(t *testing.T) {
	// The read sees pending, but the conditional write loses a race
	// against a concurrent cancel. The error must surface as an
	// invalid transition, not as a silent overwrite.
	repo := &mockBookingRepository{}
	calls := 0
	repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		calls++
		b := pendingBooking()
		if calls > 1 {
			b.Status = model.StatusCancelled
		}
		return b, nil
	}
	repo.setStatusFunc = func(ctx context.Context, id string, to model.BookingStatus) error {
		return bookingserrors.ErrStaleStatus
	}
	svc := newTestService(repo, &mockServiceRepository{}, &recordingPublisher{})

	_, err := svc.SetStatus(context.Background(), identity.Identity{UserID: sellerID, Role: identity.RoleSeller}, bookingID, model.StatusConfirmed)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestCancel_RequiresReason(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockServiceRepository{}, &recordingPublisher{})

	_, err := svc.Cancel(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}, bookingID, "   ")
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCancel_StoresReason(t *testing.T) {
	var storedReason string
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := pendingBooking()
			b.Status = model.StatusConfirmed
			return b, nil
		},
		cancelFunc: func(ctx context.Context, id string, reason string) error {
			storedReason = reason
			return nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newTestService(repo, &mockServiceRepository{}, publisher)

	booking, err := svc.Cancel(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}, bookingID, "Venue changed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s", booking.Status)
	}
	if storedReason != "Venue changed" {
		t.Errorf("expected reason stored, got %q", storedReason)
	}
	if len(publisher.cancelled) != 1 {
		t.Errorf("expected 1 cancelled event, got %d", len(publisher.cancelled))
	}
}

func TestCancel_SellerRoleRejected(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	svc := newTestService(repo, &mockServiceRepository{}, &recordingPublisher{})

	_, err := svc.Cancel(context.Background(), identity.Identity{UserID: sellerID, Role: identity.RoleSeller}, bookingID, "reason")
	if !apperrors.HasCode(err, apperrors.CodeRoleMismatch) {
		t.Fatalf("expected ROLE_MISMATCH, got %v", err)
	}
}

func TestBookingLifecycle_CancelBeatsComplete(t *testing.T) {
	// Create -> confirm -> buyer cancels -> seller completion fails.
	store := pendingBooking()
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			copy := *store
			return &copy, nil
		},
		setStatusFunc: func(ctx context.Context, id string, to model.BookingStatus) error {
			if store.Status.Terminal() {
				return bookingserrors.ErrStaleStatus
			}
			store.Status = to
			return nil
		},
		cancelFunc: func(ctx context.Context, id string, reason string) error {
			if store.Status.Terminal() {
				return bookingserrors.ErrStaleStatus
			}
			store.Status = model.StatusCancelled
			store.CancellationReason = reason
			return nil
		},
	}
	svc := newTestService(repo, &mockServiceRepository{}, &recordingPublisher{})

	seller := identity.Identity{UserID: sellerID, Role: identity.RoleSeller}
	buyer := identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}

	if _, err := svc.SetStatus(context.Background(), seller, bookingID, model.StatusConfirmed); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), buyer, bookingID, "Changed plans"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if store.CancellationReason != "Changed plans" {
		t.Errorf("expected reason stored, got %q", store.CancellationReason)
	}

	_, err := svc.SetStatus(context.Background(), seller, bookingID, model.StatusCompleted)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("expected INVALID_TRANSITION after cancel, got %v", err)
	}
}

func TestGetByID_ParticipantsOnly(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pendingBooking(), nil
		},
	}
	svc := newTestService(repo, &mockServiceRepository{}, &recordingPublisher{})

	if _, err := svc.GetByID(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}, bookingID); err != nil {
		t.Errorf("buyer read failed: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), identity.Identity{UserID: sellerID, Role: identity.RoleSeller}, bookingID); err != nil {
		t.Errorf("seller read failed: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), identity.Identity{UserID: otherID, Role: identity.RoleBuyer}, bookingID); !apperrors.HasCode(err, apperrors.CodeNotParticipant) {
		t.Errorf("expected NOT_PARTICIPANT for stranger, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), identity.Identity{UserID: otherID, Role: identity.RoleAdmin}, bookingID); err != nil {
		t.Errorf("admin read failed: %v", err)
	}
}

func TestListForBuyer_InvalidStatusFilter(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockServiceRepository{}, &recordingPublisher{})

	_, _, err := svc.ListForBuyer(context.Background(), identity.Identity{UserID: buyerID, Role: identity.RoleBuyer}, "bogus", query.DefaultPage())
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
