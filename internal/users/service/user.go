package service

import (
	"context"
	"errors"
	"sync"

	userserrors "srida/internal/users/errors"
	"srida/internal/users/repository"
	"srida/pkg/config"
	apperrors "srida/pkg/errors"
	"srida/pkg/model"
	"srida/pkg/query"
)

// ListFilter narrows admin user listings. All conditions are
// conjunctive; empty fields do not constrain.
type ListFilter struct {
	Role   string
	Search string
}

type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, filter ListFilter, page query.Page) ([]*model.User, int64, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	Delete(ctx context.Context, id string) error
	Summaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error)
}

type userService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewUserService(repo repository.UserRepository, cfg *config.Config) UserService {
	return &userService{repo: repo, cfg: cfg}
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid user ID format")
		}
		return nil, apperrors.StoreUnavailable("find user", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filter ListFilter, page query.Page) ([]*model.User, int64, error) {
	storeFilter := query.New().
		Equal("role", filter.Role).
		SearchAny(filter.Search, "name", "email").
		Build()

	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, storeFilter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count users", "error", errCount)
			errCount = apperrors.StoreUnavailable("count users", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, storeFilter, page)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list users", "error", errFind)
			errFind = apperrors.StoreUnavailable("list users", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return users, count, nil
}

func (s *userService) SetVerified(ctx context.Context, id string, verified bool) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	err := s.repo.SetVerified(ctx, id, verified)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		return apperrors.StoreUnavailable("update user", err)
	}

	s.cfg.Log.Info("User verification updated", "id", id, "verified", verified)
	return nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		if errors.Is(err, userserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid user ID format")
		}
		return apperrors.StoreUnavailable("delete user", err)
	}

	s.cfg.Log.Info("User deleted", "id", id)
	return nil
}

// Summaries resolves user ids to embeddable summaries for relation
// population. Missing users are omitted, not errors: a listing must
// not fail because one counterparty was deleted.
func (s *userService) Summaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	users, err := s.repo.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, apperrors.StoreUnavailable("resolve users", err)
	}

	summaries := make(map[string]*model.UserSummary, len(users))
	for id, u := range users {
		summaries[id] = u.Summary()
	}
	return summaries, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
