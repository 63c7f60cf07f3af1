package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/models"
)

// UserStore is the data-access interface UserService depends on.
type UserStore = domain.UserService

// Compile-time check: *UserService must satisfy domain.UserService.
var _ domain.UserService = (*UserService)(nil)

// UserService wraps UserStore with username and email uniqueness pre-checks.
type UserService struct {
	*Resource[models.User, models.UserFilter]
	store UserStore
}

// NewUserService creates a UserService.
func NewUserService(store UserStore, log *logrus.Logger) *UserService {
	emailExcluding := func(ctx context.Context, email, excludeID string) ([]models.User, error) {
		return store.FindByFieldAndNotID(ctx, "email", email, excludeID)
	}

	return &UserService{
		Resource: newResource(store, "user", log,
			uniqueCheck{field: "username", taken: takenBy(store.FindByUsername, store.FindByUsernameAndNotID)},
			uniqueCheck{field: "email", taken: takenBy(store.FindByEmail, emailExcluding)},
		),
		store: store,
	}
}

// FindByUsername returns users with exactly this username (pass-through).
func (s *UserService) FindByUsername(ctx context.Context, username string) ([]models.User, error) {
	return s.store.FindByUsername(ctx, username)
}

// FindByUsernameAndNotID returns users with this username other than excludeID (pass-through).
func (s *UserService) FindByUsernameAndNotID(ctx context.Context, username, excludeID string) ([]models.User, error) {
	return s.store.FindByUsernameAndNotID(ctx, username, excludeID)
}

// FindByEmail returns users with exactly this email (pass-through).
func (s *UserService) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	return s.store.FindByEmail(ctx, email)
}

// FindByFieldAndNotID returns users whose field equals value, other than excludeID (pass-through).
func (s *UserService) FindByFieldAndNotID(ctx context.Context, field string, value any, excludeID string) ([]models.User, error) {
	return s.store.FindByFieldAndNotID(ctx, field, value, excludeID)
}
