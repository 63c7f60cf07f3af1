// Package domain defines the canonical service interfaces shared across
// layers (REST handlers, services, stores). Consumers should depend on these
// interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// ResourceService is the operation set shared by every CRUD resource.
// T is the entity type and F its list filter.
type ResourceService[T any, F any] interface {
	Create(ctx context.Context, data models.Payload, actor *models.Actor) (*T, error)
	Update(ctx context.Context, id string, data models.Payload, actor *models.Actor) (*T, error)
	Destroy(ctx context.Context, id string, actor *models.Actor) error
	Count(ctx context.Context, criteria *query.Group) (int64, error)
	FindByID(ctx context.Context, id string) (*T, error)
	FindAndCountAll(ctx context.Context, filter F, opts models.ListOptions) (*models.Page[T], error)
	FindAllAutocomplete(ctx context.Context, search string, limit int64) ([]models.AutocompleteOption, error)
}

// ItemService defines item operations.
type ItemService interface {
	ResourceService[models.Item, models.ItemFilter]
	FindByName(ctx context.Context, name string) ([]models.Item, error)
	FindByNameAndNotID(ctx context.Context, name, excludeID string) ([]models.Item, error)
}

// RoleService defines role operations.
type RoleService interface {
	ResourceService[models.Role, models.RoleFilter]
	FindByName(ctx context.Context, name string) ([]models.Role, error)
	FindByNameAndNotID(ctx context.Context, name, excludeID string) ([]models.Role, error)
}

// UserService defines user operations.
type UserService interface {
	ResourceService[models.User, models.UserFilter]
	FindByUsername(ctx context.Context, username string) ([]models.User, error)
	FindByUsernameAndNotID(ctx context.Context, username, excludeID string) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) ([]models.User, error)
	FindByFieldAndNotID(ctx context.Context, field string, value any, excludeID string) ([]models.User, error)
}

// AuditService defines audit log queries.
type AuditService interface {
	FindAndCountAll(ctx context.Context, filter models.AuditFilter, opts models.ListOptions) (*models.Page[models.AuditEntry], error)
}

// EventPublisher accepts committed audit entries for the change feed.
// Publish must not block.
type EventPublisher interface {
	Publish(entry models.AuditEntry)
}
