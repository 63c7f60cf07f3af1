package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/models"
)

// ItemStore is the data-access interface ItemService depends on.
// It reuses domain.ItemService since the method sets are identical.
type ItemStore = domain.ItemService

// Compile-time check: *ItemService must satisfy domain.ItemService.
var _ domain.ItemService = (*ItemService)(nil)

// ItemService wraps ItemStore with a name uniqueness pre-check.
type ItemService struct {
	*Resource[models.Item, models.ItemFilter]
	store ItemStore
}

// NewItemService creates an ItemService.
func NewItemService(store ItemStore, log *logrus.Logger) *ItemService {
	return &ItemService{
		Resource: newResource(store, "item", log,
			uniqueCheck{field: "name", taken: takenBy(store.FindByName, store.FindByNameAndNotID)},
		),
		store: store,
	}
}

// FindByName returns items with exactly this name (pass-through).
func (s *ItemService) FindByName(ctx context.Context, name string) ([]models.Item, error) {
	return s.store.FindByName(ctx, name)
}

// FindByNameAndNotID returns items with this name other than excludeID (pass-through).
func (s *ItemService) FindByNameAndNotID(ctx context.Context, name, excludeID string) ([]models.Item, error) {
	return s.store.FindByNameAndNotID(ctx, name, excludeID)
}
