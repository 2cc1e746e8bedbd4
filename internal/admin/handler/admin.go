package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"srida/internal/admin/service"
	servicesvc "srida/internal/services/service"
	usersvc "srida/internal/users/service"
	apperrors "srida/pkg/errors"
	httputil "srida/pkg/http"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/query"
)

type AdminHandler struct {
	service service.AdminService
	log     *logger.Logger
}

func NewAdminHandler(service service.AdminService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "Dashboard", r)
	if !ok {
		return
	}

	stats, err := h.service.Dashboard(r.Context(), id)
	if err != nil {
		h.writeError(w, "Dashboard", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Dashboard", "error", err)
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "ListUsers", r)
	if !ok {
		return
	}

	page, err := query.PageFromRequest(r)
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	q := r.URL.Query()
	filter := usersvc.ListFilter{
		Role:   q.Get("role"),
		Search: q.Get("search"),
	}

	users, total, err := h.service.ListUsers(r.Context(), id, filter, page)
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	if err := httputil.WritePaginated(w, users, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListUsers", "error", err)
	}
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "GetUser", r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUser", "error", err)
	}
}

type verifyUserRequest struct {
	Verified bool `json:"verified"`
}

func (h *AdminHandler) VerifyUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "VerifyUser", r)
	if !ok {
		return
	}

	var req verifyUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "VerifyUser", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.VerifyUser(r.Context(), id, ps.ByName("id"), req.Verified); err != nil {
		h.writeError(w, "VerifyUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"id": ps.ByName("id"), "verified": req.Verified}); err != nil {
		h.log.Error("failed to write success response", "handler", "VerifyUser", "error", err)
	}
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "DeleteUser", r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id, ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteUser", err)
		return
	}

	httputil.WriteNoContent(w)
}

// ListServices is the oversight listing: unlike the storefront, it
// includes unavailable services.
func (h *AdminHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "ListServices", r)
	if !ok {
		return
	}

	page, err := query.PageFromRequest(r)
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	q := r.URL.Query()
	filter := servicesvc.ListFilter{
		Category: q.Get("category"),
		City:     q.Get("city"),
		Search:   q.Get("search"),
	}

	services, total, err := h.service.ListServices(r.Context(), id, filter, page)
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	if err := httputil.WritePaginated(w, services, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListServices", "error", err)
	}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "ListBookings", r)
	if !ok {
		return
	}

	page, err := query.PageFromRequest(r)
	if err != nil {
		h.writeError(w, "ListBookings", err)
		return
	}

	bookings, total, err := h.service.ListBookings(r.Context(), id, r.URL.Query().Get("status"), page)
	if err != nil {
		h.writeError(w, "ListBookings", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListBookings", "error", err)
	}
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/dashboard", h.Dashboard)
	router.GET("/api/v1/admin/users", h.ListUsers)
	router.GET("/api/v1/admin/users/id/:id", h.GetUser)
	router.PATCH("/api/v1/admin/users/id/:id/verify", h.VerifyUser)
	router.DELETE("/api/v1/admin/users/id/:id", h.DeleteUser)
	router.GET("/api/v1/admin/services", h.ListServices)
	router.GET("/api/v1/admin/bookings", h.ListBookings)
}

func (h *AdminHandler) requireIdentity(w http.ResponseWriter, handler string, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
		return identity.Identity{}, false
	}
	return id, true
}

func (h *AdminHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
