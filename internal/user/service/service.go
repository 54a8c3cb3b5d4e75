// Package service implements the user use cases on top of the user store.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,UserCache,Metrics

import (
	"context"
	"errors"

	"kycore/internal/platform/logger"
	"kycore/internal/platform/postgres"
	"kycore/internal/user/models"
	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
	"kycore/pkg/platform/sentinel"
	"kycore/pkg/platform/tx"
	"kycore/pkg/repository"
)

type UserStore interface {
	Save(ctx context.Context, user *models.User, opts ...repository.ModifyOption) (*models.User, error)
	FindByEmail(ctx context.Context, email domain.Email) (*models.User, bool, error)
	FindOneByIDOrThrow(ctx context.Context, id domain.ID, opts repository.FindOneOptions) (*models.User, error)
	FindManyPaginated(ctx context.Context, params repository.PageParams[models.Filters]) (repository.Page[*models.User], error)
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserCache is a read-through cache of users by id.
type UserCache interface {
	Load(ctx context.Context, id domain.ID, load func(ctx context.Context) (*models.User, error)) (*models.User, error)
	Invalidate(ctx context.Context, id domain.ID) error
}

type Metrics interface {
	IncrementUsersCreated()
	IncrementKYCStatusChange(status string)
}

type Service struct {
	users   UserStore
	cache   UserCache
	metrics Metrics
	logger  *logger.Logger
}

type Option func(*Service)

func WithCache(cache UserCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(metrics Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) { s.logger = log }
}

func New(users UserStore, opts ...Option) *Service {
	s := &Service{users: users, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new pending user.
//
// Errors: CodeArgumentInvalid for a malformed email, CodeConflict when the email
// is already registered.
func (s *Service) CreateUser(ctx context.Context, rawEmail string) (*models.User, error) {
	email, err := domain.NewEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	_, exists, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if exists {
		return nil, dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict, "email already registered")
	}

	user, err := models.NewUser(email)
	if err != nil {
		return nil, err
	}
	saved, err := s.users.Save(ctx, user)
	if postgres.IsUniqueViolation(err) {
		return nil, dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict, "email already registered")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	s.logger.Log(ctx, "user registered", "user_id", saved.ID().String())
	return saved, nil
}

// GetUser returns the user with id, served from the cache when one is configured.
func (s *Service) GetUser(ctx context.Context, id domain.ID) (*models.User, error) {
	load := func(ctx context.Context) (*models.User, error) {
		return s.users.FindOneByIDOrThrow(ctx, id, repository.FindOneOptions{})
	}
	var (
		user *models.User
		err  error
	)
	if s.cache != nil {
		user, err = s.cache.Load(ctx, id, load)
	} else {
		user, err = load(ctx)
	}
	if err != nil {
		return nil, translate(err, "failed to load user")
	}
	return user, nil
}

// ListUsers returns a page of users matching filters, newest first.
func (s *Service) ListUsers(ctx context.Context, filters models.Filters, page repository.Pagination) (repository.Page[*models.User], error) {
	result, err := s.users.FindManyPaginated(ctx, repository.PageParams[models.Filters]{
		Filters:    filters,
		Pagination: page,
		OrderBy:    []repository.Order{{Column: "created_at", Desc: true}},
	})
	if err != nil {
		return result, translate(err, "failed to list users")
	}
	return result, nil
}

// ChangeKYCStatus moves a user to status under an exclusive row lock. The cached
// copy is dropped once the change commits.
func (s *Service) ChangeKYCStatus(ctx context.Context, id domain.ID, status models.KYCStatus) (*models.User, error) {
	user, err := s.modify(ctx, id, func(u *models.User) error {
		return u.SetKYCStatus(status)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementKYCStatusChange(string(status))
	}
	s.logger.Log(ctx, "kyc status changed", "user_id", id.String(), "kyc_status", string(status))
	return user, nil
}

// UpdateMetadata replaces the user's metadata document.
func (s *Service) UpdateMetadata(ctx context.Context, id domain.ID, doc domain.Document) (*models.User, error) {
	return s.modify(ctx, id, func(u *models.User) error {
		u.SetMetadata(doc)
		return nil
	})
}

func (s *Service) modify(ctx context.Context, id domain.ID, change func(u *models.User) error) (*models.User, error) {
	user, err := repository.InTransaction(ctx, s.users, func(ctx context.Context) (*models.User, error) {
		user, err := s.users.FindOneByIDOrThrow(ctx, id, repository.FindOneOptions{Lock: repository.LockExclusive})
		if err != nil {
			return nil, err
		}
		if err := change(user); err != nil {
			return nil, err
		}
		saved, err := s.users.Save(ctx, user)
		if err != nil {
			return nil, err
		}
		s.invalidate(ctx, id)
		return saved, nil
	})
	if err != nil {
		return nil, translate(err, "failed to update user")
	}
	return user, nil
}

// invalidate drops the cached user after the surrounding transaction commits, or
// immediately when there is none.
func (s *Service) invalidate(ctx context.Context, id domain.ID) {
	if s.cache == nil {
		return
	}
	drop := func(ctx context.Context) error {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.logger.Warn(ctx, "user cache invalidation failed", "user_id", id.String(), "error", err)
		}
		return nil
	}
	if handle, ok := tx.From(ctx); ok {
		handle.AfterCommit(drop)
		return
	}
	_ = drop(ctx)
}

// translate keeps coded errors and marks everything else internal.
func translate(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
