package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"srida/internal/authz"
	serviceserrors "srida/internal/services/errors"
	"srida/internal/services/repository"
	"srida/internal/services/validator"
	usersvc "srida/internal/users/service"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/model"
	"srida/pkg/query"
	"srida/pkg/sanitizer"
)

// ListFilter narrows public and admin service listings. Conditions
// combine conjunctively; zero values do not constrain.
type ListFilter struct {
	Category string
	City     string
	Search   string
	MinPrice *float64
	MaxPrice *float64
}

type ServiceService interface {
	ListPublic(ctx context.Context, filter ListFilter, page query.Page) ([]*model.Service, int64, error)
	ListAll(ctx context.Context, filter ListFilter, page query.Page) ([]*model.Service, int64, error)
	ListOwn(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Service, int64, error)
	GetByID(ctx context.Context, serviceID string) (*model.Service, error)
	Nearby(ctx context.Context, category string, page query.Page) ([]*model.Service, int64, error)
	Create(ctx context.Context, id identity.Identity, service *model.Service) error
	Update(ctx context.Context, id identity.Identity, serviceID string, updates *model.ServiceUpdate) (*model.Service, error)
	Delete(ctx context.Context, id identity.Identity, serviceID string) error
}

type serviceService struct {
	repo      repository.ServiceRepository
	users     usersvc.UserService
	validator *validator.ServiceValidator
	cfg       *config.Config
}

func NewServiceService(
	repo repository.ServiceRepository,
	users usersvc.UserService,
	validator *validator.ServiceValidator,
	cfg *config.Config,
) ServiceService {
	return &serviceService{
		repo:      repo,
		users:     users,
		validator: validator,
		cfg:       cfg,
	}
}

// ListPublic is the storefront listing. Unavailable services are
// hidden here and only here: owners and admins see everything.
func (s *serviceService) ListPublic(ctx context.Context, filter ListFilter, page query.Page) ([]*model.Service, int64, error) {
	storeFilter := buildFilter(filter)
	storeFilter["availability"] = true
	return s.list(ctx, storeFilter, page)
}

func (s *serviceService) ListAll(ctx context.Context, filter ListFilter, page query.Page) ([]*model.Service, int64, error) {
	return s.list(ctx, buildFilter(filter), page)
}

func (s *serviceService) ListOwn(ctx context.Context, id identity.Identity, page query.Page) ([]*model.Service, int64, error) {
	if err := authz.Authorize(id, authz.ActionListOwn, nil); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, bson.M{"seller_id": id.UserID}, page)
}

func (s *serviceService) list(ctx context.Context, filter bson.M, page query.Page) ([]*model.Service, int64, error) {
	var count int64
	var services []*model.Service
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count services", "error", errCount)
			errCount = apperrors.StoreUnavailable("count services", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		services, errFind = s.repo.FindAll(ctx, filter, page)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list services", "error", errFind)
			errFind = apperrors.StoreUnavailable("list services", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.populateSellers(ctx, services)
	return services, count, nil
}

func (s *serviceService) GetByID(ctx context.Context, serviceID string) (*model.Service, error) {
	service, err := s.find(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	s.populateSellers(ctx, []*model.Service{service})
	return service, nil
}

// Nearby lists available services for a coordinate pair. The
// coordinates are required for interface compatibility but not used:
// there is no spatial index, so the result is every available service
// (optionally narrowed by category), newest first.
func (s *serviceService) Nearby(ctx context.Context, category string, page query.Page) ([]*model.Service, int64, error) {
	filter := query.New().
		Equal("category", category).
		EqualBool("availability", true).
		Build()
	return s.list(ctx, filter, page)
}

func (s *serviceService) Create(ctx context.Context, id identity.Identity, service *model.Service) error {
	if err := authz.Authorize(id, authz.ActionCreateService, nil); err != nil {
		return err
	}

	service.ID = ""
	service.SellerID = id.UserID
	service.Rating = model.Rating{}
	s.sanitize(service)

	if err := s.validator.Validate(service); err != nil {
		s.cfg.Log.Warn("Service validation failed", "seller_id", id.UserID, "error", err)
		return apperrors.Validation("Invalid service input", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, service); err != nil {
		s.cfg.Log.Error("Failed to create service", "seller_id", id.UserID, "error", err)
		return apperrors.StoreUnavailable("create service", err)
	}

	s.cfg.Log.Info("Service created",
		"id", service.ID,
		"seller_id", service.SellerID,
		"category", service.Category,
	)
	return nil
}

func (s *serviceService) Update(ctx context.Context, id identity.Identity, serviceID string, updates *model.ServiceUpdate) (*model.Service, error) {
	existing, err := s.find(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if err := authz.Authorize(id, authz.ActionUpdateService, authz.ServiceResource{SellerID: existing.SellerID}); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Service update validation failed", "id", serviceID, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	set := updateSet(updates)
	if len(set) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, serviceID, set); err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", serviceID)
		}
		s.cfg.Log.Error("Failed to update service", "id", serviceID, "error", err)
		return nil, apperrors.StoreUnavailable("update service", err)
	}

	updated, err := s.find(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Service updated", "id", serviceID)
	return updated, nil
}

func (s *serviceService) Delete(ctx context.Context, id identity.Identity, serviceID string) error {
	existing, err := s.find(ctx, serviceID)
	if err != nil {
		return err
	}

	if err := authz.Authorize(id, authz.ActionDeleteService, authz.ServiceResource{SellerID: existing.SellerID}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, serviceID); err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", serviceID)
		}
		s.cfg.Log.Error("Failed to delete service", "id", serviceID, "error", err)
		return apperrors.StoreUnavailable("delete service", err)
	}

	s.cfg.Log.Info("Service deleted", "id", serviceID, "deleted_by", id.UserID)
	return nil
}

func (s *serviceService) find(ctx context.Context, serviceID string) (*model.Service, error) {
	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	service, err := s.repo.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", serviceID)
		}
		if errors.Is(err, serviceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		return nil, apperrors.StoreUnavailable("find service", err)
	}
	return service, nil
}

func (s *serviceService) sanitize(service *model.Service) {
	service.Name = sanitizer.NormalizeName(service.Name)
	service.Description = sanitizer.TrimAndNormalize(service.Description)
	service.Location.City = sanitizer.NormalizeCity(service.Location.City)
	service.Location.Address = sanitizer.TrimAndNormalize(service.Location.Address)
}

// populateSellers attaches seller summaries. Resolution failures are
// logged and swallowed: a listing degrades to bare ids rather than
// erroring.
func (s *serviceService) populateSellers(ctx context.Context, services []*model.Service) {
	ids := make([]string, 0, len(services))
	for _, svc := range services {
		ids = append(ids, svc.SellerID)
	}

	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve sellers", "error", err)
		return
	}
	for _, svc := range services {
		svc.Seller = summaries[svc.SellerID]
	}
}

func buildFilter(filter ListFilter) bson.M {
	return query.New().
		Equal("category", filter.Category).
		Substring("location.city", filter.City).
		SearchAny(filter.Search, "name", "description").
		Range("pricing.base_price", filter.MinPrice, filter.MaxPrice).
		Build()
}

func updateSet(updates *model.ServiceUpdate) bson.M {
	set := bson.M{}
	if updates.Name != "" {
		set["name"] = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Category != "" {
		set["category"] = updates.Category
	}
	if updates.Description != "" {
		set["description"] = sanitizer.TrimAndNormalize(updates.Description)
	}
	if updates.Pricing != nil {
		set["pricing"] = *updates.Pricing
	}
	if updates.Images != nil {
		set["images"] = updates.Images
	}
	if updates.Availability != nil {
		set["availability"] = *updates.Availability
	}
	if updates.Location != nil {
		loc := *updates.Location
		loc.City = sanitizer.NormalizeCity(loc.City)
		loc.Address = sanitizer.TrimAndNormalize(loc.Address)
		set["location"] = loc
	}
	if updates.Features != nil {
		set["features"] = updates.Features
	}
	if updates.MinBookingDuration != "" {
		set["min_booking_duration"] = updates.MinBookingDuration
	}
	if updates.AdvanceBookingDays != nil {
		set["advance_booking_days"] = *updates.AdvanceBookingDays
	}
	return set
}
