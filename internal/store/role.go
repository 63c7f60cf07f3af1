package store

import (
	"context"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// RoleDescriptor describes the roles collection.
var RoleDescriptor = Descriptor[models.RoleFilter]{
	Collection:   "roles",
	EntityName:   "role",
	DefaultSort:  "name_ASC",
	UniqueFields: []string{"name"},
	DisplayField: "name",
	SearchFields: []string{"name", "description"},
	ApplyFilter: func(q *query.Builder, f models.RoleFilter) {
		if f.ID != "" {
			q.AppendID(query.IDField, f.ID)
		}
		if f.Name != "" {
			q.AppendContainsFold("name", f.Name)
		}
		if f.Description != "" {
			q.AppendContainsFold("description", f.Description)
		}
	},
}

// RoleStore provides data access for roles.
type RoleStore struct {
	*Repository[models.Role, models.RoleFilter]
}

// NewRoleStore creates a RoleStore.
func NewRoleStore(base Base, audit AuditLogger) *RoleStore {
	return &RoleStore{Repository: NewRepository[models.Role](base, audit, RoleDescriptor)}
}

// FindByName returns roles whose name equals name.
func (s *RoleStore) FindByName(ctx context.Context, name string) ([]models.Role, error) {
	return s.FindByField(ctx, "name", name)
}

// FindByNameAndNotID returns roles named name other than excludeID.
func (s *RoleStore) FindByNameAndNotID(ctx context.Context, name, excludeID string) ([]models.Role, error) {
	return s.FindByFieldAndNotID(ctx, "name", name, excludeID)
}
