package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/model"
	"srida/pkg/query"
)

const buyerID = "507f1f77bcf86cd799439011"

type mockBookingService struct {
	createFunc       func(ctx context.Context, id identity.Identity, req *model.BookingRequest) (*model.Booking, error)
	setStatusFunc    func(ctx context.Context, id identity.Identity, bookingID string, target model.BookingStatus) (*model.Booking, error)
	listForBuyerFunc func(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error)
}

func (m *mockBookingService) Create(ctx context.Context, id identity.Identity, req *model.BookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, id, req)
	}
	return &model.Booking{ID: "abc", Status: model.StatusPending}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id identity.Identity, bookingID string) (*model.Booking, error) {
	return nil, apperrors.NotFound("Booking")
}

func (m *mockBookingService) ListForBuyer(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error) {
	if m.listForBuyerFunc != nil {
		return m.listForBuyerFunc(ctx, id, status, page)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) ListForSeller(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) ListAll(ctx context.Context, status string, page query.Page) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) SetStatus(ctx context.Context, id identity.Identity, bookingID string, target model.BookingStatus) (*model.Booking, error) {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, bookingID, target)
	}
	return &model.Booking{ID: bookingID, Status: target}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id identity.Identity, bookingID string, reason string) (*model.Booking, error) {
	return &model.Booking{ID: bookingID, Status: model.StatusCancelled, CancellationReason: reason}, nil
}

func newTestHandler(service *mockBookingService) *BookingHandler {
	return NewBookingHandler(service, logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatJSON,
		Service: "test",
	}))
}

func authedRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := identity.NewContext(r.Context(), identity.Identity{UserID: buyerID, Role: identity.RoleBuyer})
	return r.WithContext(ctx)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code string) {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp.Code
}

func TestCreate_MissingIdentity(t *testing.T) {
	h := newTestHandler(&mockBookingService{})
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/v1/bookings", strings.NewReader("{}"))

	h.Create(w, r, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if code := decodeError(t, w); code != apperrors.CodeUnauthorized {
		t.Errorf("expected UNAUTHORIZED, got %s", code)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	h := newTestHandler(&mockBookingService{})
	w := httptest.NewRecorder()

	h.Create(w, authedRequest("POST", "/api/v1/bookings", "{not json"), nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreate_Success(t *testing.T) {
	h := newTestHandler(&mockBookingService{})
	w := httptest.NewRecorder()
	body := `{"service_id":"507f1f77bcf86cd799439013","event_type":"Wedding"}`

	h.Create(w, authedRequest("POST", "/api/v1/bookings", body), nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	h := newTestHandler(&mockBookingService{})
	w := httptest.NewRecorder()
	ps := httprouter.Params{{Key: "id", Value: "abc"}}

	h.SetStatus(w, authedRequest("PATCH", "/api/v1/bookings/id/abc/status", `{"status":"shipped"}`), ps)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := decodeError(t, w); code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", code)
	}
}

func TestSetStatus_ParsesTarget(t *testing.T) {
	var gotTarget model.BookingStatus
	service := &mockBookingService{
		setStatusFunc: func(ctx context.Context, id identity.Identity, bookingID string, target model.BookingStatus) (*model.Booking, error) {
			gotTarget = target
			return &model.Booking{ID: bookingID, Status: target}, nil
		},
	}
	h := newTestHandler(service)
	w := httptest.NewRecorder()
	ps := httprouter.Params{{Key: "id", Value: "abc"}}

	h.SetStatus(w, authedRequest("PATCH", "/api/v1/bookings/id/abc/status", `{"status":"in-progress"}`), ps)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotTarget != model.StatusInProgress {
		t.Errorf("expected in-progress, got %s", gotTarget)
	}
}

func TestMyBookings_InvalidPagination(t *testing.T) {
	h := newTestHandler(&mockBookingService{})
	w := httptest.NewRecorder()

	h.MyBookings(w, authedRequest("GET", "/api/v1/bookings/my-bookings?page=0", ""), nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := decodeError(t, w); code != apperrors.CodeInvalidPagination {
		t.Errorf("expected INVALID_PAGINATION, got %s", code)
	}
}

func TestMyBookings_PaginationEnvelope(t *testing.T) {
	service := &mockBookingService{
		listForBuyerFunc: func(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error) {
			return []*model.Booking{{ID: "abc"}}, 25, nil
		},
	}
	h := newTestHandler(service)
	w := httptest.NewRecorder()

	h.MyBookings(w, authedRequest("GET", "/api/v1/bookings/my-bookings?page=2&limit=10", ""), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Pagination struct {
			CurrentPage  int   `json:"current_page"`
			TotalPages   int   `json:"total_pages"`
			TotalRecords int64 `json:"total_records"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Pagination.CurrentPage != 2 || resp.Pagination.TotalPages != 3 || resp.Pagination.TotalRecords != 25 {
		t.Errorf("unexpected pagination: %+v", resp.Pagination)
	}
}
