package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"srida/internal/wishlist/service"
	apperrors "srida/pkg/errors"
	httputil "srida/pkg/http"
	"srida/pkg/identity"
	"srida/pkg/logger"
)

type WishlistHandler struct {
	service service.WishlistService
	log     *logger.Logger
}

func NewWishlistHandler(service service.WishlistService, log *logger.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		log:     log,
	}
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "Get", r)
	if !ok {
		return
	}

	wishlist, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, wishlist); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "Add", r)
	if !ok {
		return
	}

	wishlist, err := h.service.Add(r.Context(), id, ps.ByName("serviceId"))
	if err != nil {
		h.writeError(w, "Add", err)
		return
	}

	if err := httputil.WriteCreated(w, wishlist); err != nil {
		h.log.Error("failed to write created response", "handler", "Add", "error", err)
	}
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "Remove", r)
	if !ok {
		return
	}

	wishlist, err := h.service.Remove(r.Context(), id, ps.ByName("serviceId"))
	if err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	if err := httputil.WriteSuccess(w, wishlist); err != nil {
		h.log.Error("failed to write success response", "handler", "Remove", "error", err)
	}
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "Clear", r)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), id); err != nil {
		h.writeError(w, "Clear", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *WishlistHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/wishlist", h.Get)
	router.POST("/api/v1/wishlist/services/:serviceId", h.Add)
	router.DELETE("/api/v1/wishlist/services/:serviceId", h.Remove)
	router.DELETE("/api/v1/wishlist", h.Clear)
}

func (h *WishlistHandler) requireIdentity(w http.ResponseWriter, handler string, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
		return identity.Identity{}, false
	}
	return id, true
}

func (h *WishlistHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
