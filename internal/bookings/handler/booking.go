package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"srida/internal/bookings/service"
	apperrors "srida/pkg/errors"
	httputil "srida/pkg/http"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/model"
	"srida/pkg/query"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "Create", r)
	if !ok {
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "GetByID", r)
	if !ok {
		return
	}

	booking, err := h.service.GetByID(r.Context(), id, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

// MyBookings lists the calling buyer's bookings, newest first, with an
// optional status filter.
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listFor(w, r, "MyBookings", h.service.ListForBuyer)
}

// SellerBookings lists bookings against the calling seller's services.
func (h *BookingHandler) SellerBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listFor(w, r, "SellerBookings", h.service.ListForSeller)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "SetStatus", r)
	if !ok {
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SetStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	target, valid := model.ParseBookingStatus(req.Status)
	if !valid {
		h.writeError(w, "SetStatus", apperrors.InvalidInput("Invalid status: "+req.Status))
		return
	}

	booking, err := h.service.SetStatus(r.Context(), id, ps.ByName("id"), target)
	if err != nil {
		h.writeError(w, "SetStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "SetStatus", "error", err)
	}
}

type cancelRequest struct {
	CancellationReason string `json:"cancellation_reason"`
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "Cancel", r)
	if !ok {
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Cancel", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Cancel(r.Context(), id, ps.ByName("id"), req.CancellationReason)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/my-bookings", h.MyBookings)
	router.GET("/api/v1/bookings/seller-bookings", h.SellerBookings)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/status", h.SetStatus)
	router.PATCH("/api/v1/bookings/id/:id/cancel", h.Cancel)
}

func (h *BookingHandler) listFor(
	w http.ResponseWriter,
	r *http.Request,
	handler string,
	list func(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error),
) {
	id, ok := h.requireIdentity(w, handler, r)
	if !ok {
		return
	}

	page, err := query.PageFromRequest(r)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	bookings, total, err := list(r.Context(), id, r.URL.Query().Get("status"), page)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "error", err)
	}
}

func (h *BookingHandler) requireIdentity(w http.ResponseWriter, handler string, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
		return identity.Identity{}, false
	}
	return id, true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
