package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"srida/internal/messages/service"
	apperrors "srida/pkg/errors"
	httputil "srida/pkg/http"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/model"
	"srida/pkg/query"
)

type MessageHandler struct {
	service service.MessageService
	log     *logger.Logger
}

func NewMessageHandler(service service.MessageService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		log:     log,
	}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "Send", r)
	if !ok {
		return
	}

	var req model.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Send", apperrors.InvalidInput("Invalid request body"))
		return
	}

	message, err := h.service.Send(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, "Send", err)
		return
	}

	if err := httputil.WriteCreated(w, message); err != nil {
		h.log.Error("failed to write created response", "handler", "Send", "error", err)
	}
}

func (h *MessageHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "GetByID", r)
	if !ok {
		return
	}

	message, err := h.service.GetByID(r.Context(), id, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, message); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listFor(w, r, "Inbox", func(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error) {
		return h.service.Inbox(ctx, id, page)
	})
}

func (h *MessageHandler) Sent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listFor(w, r, "Sent", func(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error) {
		return h.service.Sent(ctx, id, page)
	})
}

// Conversation returns the merged two-party thread in chronological
// order.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.listFor(w, r, "Conversation", func(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error) {
		return h.service.Conversation(ctx, id, ps.ByName("userId"), page)
	})
}

type unreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "UnreadCount", r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), id)
	if err != nil {
		h.writeError(w, "UnreadCount", err)
		return
	}

	if err := httputil.WriteSuccess(w, unreadCountResponse{UnreadCount: count}); err != nil {
		h.log.Error("failed to write success response", "handler", "UnreadCount", "error", err)
	}
}

func (h *MessageHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/messages", h.Send)
	router.GET("/api/v1/messages/inbox", h.Inbox)
	router.GET("/api/v1/messages/sent", h.Sent)
	router.GET("/api/v1/messages/unread-count", h.UnreadCount)
	router.GET("/api/v1/messages/conversation/:userId", h.Conversation)
	router.GET("/api/v1/messages/id/:id", h.GetByID)
}

func (h *MessageHandler) listFor(
	w http.ResponseWriter,
	r *http.Request,
	handler string,
	list func(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Message, int64, error),
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

	messages, total, err := list(r.Context(), id, page)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	if err := httputil.WritePaginated(w, messages, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "error", err)
	}
}

func (h *MessageHandler) requireIdentity(w http.ResponseWriter, handler string, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
		return identity.Identity{}, false
	}
	return id, true
}

func (h *MessageHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
