package service

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"srida/internal/authz"
	bookingsrepo "srida/internal/bookings/repository"
	bookingsvc "srida/internal/bookings/service"
	servicesrepo "srida/internal/services/repository"
	servicesvc "srida/internal/services/service"
	usersvc "srida/internal/users/service"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/identity"
	"srida/pkg/model"
	"srida/pkg/query"
)

// DashboardStats is the admin overview: entity counts broken down by
// the dimensions the oversight screens chart.
type DashboardStats struct {
	TotalUsers       int64            `json:"total_users"`
	UsersByRole      map[string]int64 `json:"users_by_role"`
	TotalServices    int64            `json:"total_services"`
	TotalBookings    int64            `json:"total_bookings"`
	BookingsByStatus map[string]int64 `json:"bookings_by_status"`
	TotalRevenue     float64          `json:"total_revenue"`
	RecentUsers      []*model.User    `json:"recent_users"`
	RecentBookings   []*model.Booking `json:"recent_bookings"`
}

// recentLimit bounds the recent-activity panels on the dashboard.
const recentLimit = 5

type AdminService interface {
	Dashboard(ctx context.Context, id identity.Identity) (*DashboardStats, error)
	ListUsers(ctx context.Context, id identity.Identity, filter usersvc.ListFilter, page query.Page) ([]*model.User, int64, error)
	GetUser(ctx context.Context, id identity.Identity, userID string) (*model.User, error)
	VerifyUser(ctx context.Context, id identity.Identity, userID string, verified bool) error
	DeleteUser(ctx context.Context, id identity.Identity, userID string) error
	ListServices(ctx context.Context, id identity.Identity, filter servicesvc.ListFilter, page query.Page) ([]*model.Service, int64, error)
	ListBookings(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error)
}

type adminService struct {
	users        usersvc.UserService
	services     servicesvc.ServiceService
	servicesRepo servicesrepo.ServiceRepository
	bookings     bookingsvc.BookingService
	bookingsRepo bookingsrepo.BookingRepository
	cfg          *config.Config
}

func NewAdminService(
	users usersvc.UserService,
	services servicesvc.ServiceService,
	servicesRepo servicesrepo.ServiceRepository,
	bookings bookingsvc.BookingService,
	bookingsRepo bookingsrepo.BookingRepository,
	cfg *config.Config,
) AdminService {
	return &adminService{
		users:        users,
		services:     services,
		servicesRepo: servicesRepo,
		bookings:     bookings,
		bookingsRepo: bookingsRepo,
		cfg:          cfg,
	}
}

func (s *adminService) Dashboard(ctx context.Context, id identity.Identity) (*DashboardStats, error) {
	if err := authz.Authorize(id, authz.ActionAdminDashboard, nil); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		UsersByRole:      make(map[string]int64),
		BookingsByStatus: make(map[string]int64),
	}

	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup

	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	run(func() error {
		_, total, err := s.users.List(ctx, usersvc.ListFilter{}, query.DefaultPage())
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TotalUsers = total
		mu.Unlock()
		return nil
	})

	for _, role := range []identity.Role{identity.RoleBuyer, identity.RoleSeller, identity.RoleAdmin} {
		role := role
		run(func() error {
			_, count, err := s.users.List(ctx, usersvc.ListFilter{Role: string(role)}, query.DefaultPage())
			if err != nil {
				return err
			}
			mu.Lock()
			stats.UsersByRole[string(role)] = count
			mu.Unlock()
			return nil
		})
	}

	run(func() error {
		_, total, err := s.services.ListAll(ctx, servicesvc.ListFilter{}, query.DefaultPage())
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TotalServices = total
		mu.Unlock()
		return nil
	})

	run(func() error {
		total, err := s.bookingsRepo.Count(ctx, bson.M{})
		if err != nil {
			return apperrors.StoreUnavailable("count bookings", err)
		}
		mu.Lock()
		stats.TotalBookings = total
		mu.Unlock()
		return nil
	})

	for _, status := range []model.BookingStatus{
		model.StatusPending,
		model.StatusConfirmed,
		model.StatusInProgress,
		model.StatusCompleted,
		model.StatusCancelled,
	} {
		status := status
		run(func() error {
			count, err := s.bookingsRepo.Count(ctx, bson.M{"status": status})
			if err != nil {
				return apperrors.StoreUnavailable("count bookings", err)
			}
			mu.Lock()
			stats.BookingsByStatus[string(status)] = count
			mu.Unlock()
			return nil
		})
	}

	run(func() error {
		users, _, err := s.users.List(ctx, usersvc.ListFilter{}, query.Page{Number: 1, Size: recentLimit})
		if err != nil {
			return err
		}
		mu.Lock()
		stats.RecentUsers = users
		mu.Unlock()
		return nil
	})

	run(func() error {
		bookings, _, err := s.bookings.ListAll(ctx, "", query.Page{Number: 1, Size: recentLimit})
		if err != nil {
			return err
		}
		mu.Lock()
		stats.RecentBookings = bookings
		mu.Unlock()
		return nil
	})

	run(func() error {
		revenue, err := s.bookingsRepo.SumCompletedAmount(ctx)
		if err != nil {
			return apperrors.StoreUnavailable("aggregate revenue", err)
		}
		mu.Lock()
		stats.TotalRevenue = revenue
		mu.Unlock()
		return nil
	})

	wg.Wait()
	if firstErr != nil {
		s.cfg.Log.Error("Failed to build dashboard stats", "error", firstErr)
		return nil, firstErr
	}
	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, id identity.Identity, filter usersvc.ListFilter, page query.Page) ([]*model.User, int64, error) {
	if err := authz.Authorize(id, authz.ActionAdminListUsers, nil); err != nil {
		return nil, 0, err
	}
	return s.users.List(ctx, filter, page)
}

func (s *adminService) GetUser(ctx context.Context, id identity.Identity, userID string) (*model.User, error) {
	if err := authz.Authorize(id, authz.ActionAdminReadUser, nil); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *adminService) VerifyUser(ctx context.Context, id identity.Identity, userID string, verified bool) error {
	if err := authz.Authorize(id, authz.ActionAdminVerifyUser, nil); err != nil {
		return err
	}
	return s.users.SetVerified(ctx, userID, verified)
}

// DeleteUser removes the user and, for sellers, every service they
// own. Bookings survive: they are historical records bound to the
// frozen seller snapshot.
func (s *adminService) DeleteUser(ctx context.Context, id identity.Identity, userID string) error {
	if err := authz.Authorize(id, authz.ActionAdminDeleteUser, nil); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	if user.Role == string(identity.RoleSeller) {
		deleted, err := s.servicesRepo.DeleteBySeller(ctx, userID)
		if err != nil {
			s.cfg.Log.Error("Failed to delete seller's services", "user_id", userID, "error", err)
			return apperrors.StoreUnavailable("delete seller services", err)
		}
		s.cfg.Log.Info("Seller services removed", "user_id", userID, "count", deleted)
	}

	s.cfg.Log.Info("User deleted by admin", "user_id", userID, "admin_id", id.UserID)
	return nil
}

func (s *adminService) ListServices(ctx context.Context, id identity.Identity, filter servicesvc.ListFilter, page query.Page) ([]*model.Service, int64, error) {
	if err := authz.Authorize(id, authz.ActionAdminListServices, nil); err != nil {
		return nil, 0, err
	}
	return s.services.ListAll(ctx, filter, page)
}

func (s *adminService) ListBookings(ctx context.Context, id identity.Identity, status string, page query.Page) ([]*model.Booking, int64, error) {
	if err := authz.Authorize(id, authz.ActionAdminListBookings, nil); err != nil {
		return nil, 0, err
	}
	return s.bookings.ListAll(ctx, status, page)
}
