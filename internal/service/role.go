package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/models"
)

// RoleStore is the data-access interface RoleService depends on.
type RoleStore = domain.RoleService

// Compile-time check: *RoleService must satisfy domain.RoleService.
var _ domain.RoleService = (*RoleService)(nil)

// RoleService wraps RoleStore with a name uniqueness pre-check.
type RoleService struct {
	*Resource[models.Role, models.RoleFilter]
	store RoleStore
}

// NewRoleService creates a RoleService.
func NewRoleService(store RoleStore, log *logrus.Logger) *RoleService {
	return &RoleService{
		Resource: newResource(store, "role", log,
			uniqueCheck{field: "name", taken: takenBy(store.FindByName, store.FindByNameAndNotID)},
		),
		store: store,
	}
}

// FindByName returns roles with exactly this name (pass-through).
func (s *RoleService) FindByName(ctx context.Context, name string) ([]models.Role, error) {
	return s.store.FindByName(ctx, name)
}

// FindByNameAndNotID returns roles with this name other than excludeID (pass-through).
func (s *RoleService) FindByNameAndNotID(ctx context.Context, name, excludeID string) ([]models.Role, error) {
	return s.store.FindByNameAndNotID(ctx, name, excludeID)
}
