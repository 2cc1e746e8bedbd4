package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"srida/internal/services/service"
	apperrors "srida/pkg/errors"
	httputil "srida/pkg/http"
	"srida/pkg/identity"
	"srida/pkg/logger"
	"srida/pkg/model"
	"srida/pkg/query"
)

type ServiceHandler struct {
	service service.ServiceService
	log     *logger.Logger
}

func NewServiceHandler(service service.ServiceService, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{
		service: service,
		log:     log,
	}
}

// List is the public storefront listing: only available services, with
// optional category, city, search and price filters.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := query.PageFromRequest(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter, err := filterFromRequest(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	services, total, err := h.service.ListPublic(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, services, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *ServiceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	service, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, service); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ServiceHandler) Nearby(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	if q.Get("latitude") == "" || q.Get("longitude") == "" {
		h.writeError(w, "Nearby", apperrors.InvalidInput("latitude and longitude are required"))
		return
	}

	page, err := query.PageFromRequest(r)
	if err != nil {
		h.writeError(w, "Nearby", err)
		return
	}

	services, total, err := h.service.Nearby(r.Context(), q.Get("category"), page)
	if err != nil {
		h.writeError(w, "Nearby", err)
		return
	}

	if err := httputil.WritePaginated(w, services, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Nearby", "error", err)
	}
}

func (h *ServiceHandler) MyServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "MyServices", r)
	if !ok {
		return
	}

	page, err := query.PageFromRequest(r)
	if err != nil {
		h.writeError(w, "MyServices", err)
		return
	}

	services, total, err := h.service.ListOwn(r.Context(), id, page)
	if err != nil {
		h.writeError(w, "MyServices", err)
		return
	}

	if err := httputil.WritePaginated(w, services, page.Meta(total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "MyServices", "error", err)
	}
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := h.requireIdentity(w, "Create", r)
	if !ok {
		return
	}

	var svc model.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), id, &svc); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, svc); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "Update", r)
	if !ok {
		return
	}

	var updates model.ServiceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), id, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireIdentity(w, "Delete", r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ServiceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.List)
	router.GET("/api/v1/services/nearby", h.Nearby)
	router.GET("/api/v1/services/my-services", h.MyServices)
	router.GET("/api/v1/services/id/:id", h.GetByID)
	router.POST("/api/v1/services", h.Create)
	router.PATCH("/api/v1/services/id/:id", h.Update)
	router.DELETE("/api/v1/services/id/:id", h.Delete)
}

func (h *ServiceHandler) requireIdentity(w http.ResponseWriter, handler string, r *http.Request) (identity.Identity, bool) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Authentication required"))
		return identity.Identity{}, false
	}
	return id, true
}

func (h *ServiceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func filterFromRequest(r *http.Request) (service.ListFilter, error) {
	q := r.URL.Query()
	filter := service.ListFilter{
		Category: q.Get("category"),
		City:     q.Get("city"),
		Search:   q.Get("search"),
	}

	var err error
	if filter.MinPrice, err = parsePrice(q.Get("min_price"), "min_price"); err != nil {
		return service.ListFilter{}, err
	}
	if filter.MaxPrice, err = parsePrice(q.Get("max_price"), "max_price"); err != nil {
		return service.ListFilter{}, err
	}
	return filter, nil
}

func parsePrice(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil, apperrors.InvalidInput(name + " must be a non-negative number")
	}
	return &v, nil
}
