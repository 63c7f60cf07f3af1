package store

import (
	"context"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// ItemDescriptor describes the items collection.
var ItemDescriptor = Descriptor[models.ItemFilter]{
	Collection:   "items",
	EntityName:   "item",
	DefaultSort:  "name_ASC",
	UniqueFields: []string{"name"},
	DisplayField: "name",
	SearchFields: []string{"name", "description"},
	ApplyFilter: func(q *query.Builder, f models.ItemFilter) {
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

// ItemStore provides data access for items.
type ItemStore struct {
	*Repository[models.Item, models.ItemFilter]
}

// NewItemStore creates an ItemStore.
func NewItemStore(base Base, audit AuditLogger) *ItemStore {
	return &ItemStore{Repository: NewRepository[models.Item](base, audit, ItemDescriptor)}
}

// FindByName returns items whose name equals name.
func (s *ItemStore) FindByName(ctx context.Context, name string) ([]models.Item, error) {
	return s.FindByField(ctx, "name", name)
}

// FindByNameAndNotID returns items named name other than excludeID.
func (s *ItemStore) FindByNameAndNotID(ctx context.Context, name, excludeID string) ([]models.Item, error) {
	return s.FindByFieldAndNotID(ctx, "name", name, excludeID)
}
