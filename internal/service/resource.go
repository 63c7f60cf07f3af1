// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// uniqueCheck is an advisory pre-write lookup for one unique field. It is
// not atomic with the write that follows; the store's unique index remains
// the final arbiter and surfaces races as ErrDuplicateKey.
type uniqueCheck struct {
	field string
	taken func(ctx context.Context, value, excludeID string) (bool, error)
}

// Resource wraps a resource store with advisory uniqueness checks.
type Resource[T any, F any] struct {
	store  domain.ResourceService[T, F]
	entity string
	checks []uniqueCheck
	log    *logrus.Logger
}

func newResource[T any, F any](store domain.ResourceService[T, F], entity string, log *logrus.Logger, checks ...uniqueCheck) *Resource[T, F] {
	return &Resource[T, F]{store: store, entity: entity, checks: checks, log: log}
}

// Create rejects payloads whose unique fields are already taken, then creates the record.
func (s *Resource[T, F]) Create(ctx context.Context, data models.Payload, actor *models.Actor) (*T, error) {
	if err := s.checkUnique(ctx, data, ""); err != nil {
		return nil, err
	}

	return s.store.Create(ctx, data, actor)
}

// Update rejects changes to a unique field held by another record, then applies the patch.
func (s *Resource[T, F]) Update(ctx context.Context, id string, data models.Payload, actor *models.Actor) (*T, error) {
	if err := s.checkUnique(ctx, data, id); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, id, data, actor)
}

// Destroy deletes the record (pass-through).
func (s *Resource[T, F]) Destroy(ctx context.Context, id string, actor *models.Actor) error {
	return s.store.Destroy(ctx, id, actor)
}

// Count returns the number of records matching criteria (pass-through).
func (s *Resource[T, F]) Count(ctx context.Context, criteria *query.Group) (int64, error) {
	return s.store.Count(ctx, criteria)
}

// FindByID returns a single record (pass-through).
func (s *Resource[T, F]) FindByID(ctx context.Context, id string) (*T, error) {
	return s.store.FindByID(ctx, id)
}

// FindAndCountAll returns a page of records and the total count (pass-through).
func (s *Resource[T, F]) FindAndCountAll(ctx context.Context, filter F, opts models.ListOptions) (*models.Page[T], error) {
	return s.store.FindAndCountAll(ctx, filter, opts)
}

// FindAllAutocomplete returns typeahead options (pass-through).
func (s *Resource[T, F]) FindAllAutocomplete(ctx context.Context, search string, limit int64) ([]models.AutocompleteOption, error) {
	return s.store.FindAllAutocomplete(ctx, search, limit)
}

func (s *Resource[T, F]) checkUnique(ctx context.Context, data models.Payload, excludeID string) error {
	if len(s.checks) == 0 {
		return nil
	}

	fields := data.Fields()

	for _, chk := range s.checks {
		raw, ok := fields[chk.field]
		if !ok {
			continue
		}

		value, ok := raw.(string)
		if !ok {
			continue
		}

		taken, err := chk.taken(ctx, value, excludeID)
		if err != nil {
			return fmt.Errorf("checking %s %s: %w", s.entity, chk.field, err)
		}

		if taken {
			s.log.WithFields(logrus.Fields{
				"entity": s.entity,
				"field":  chk.field,
			}).Debug("unique field already taken")

			return fmt.Errorf("%s %s already exists: %w", s.entity, chk.field, models.ErrDuplicateKey)
		}
	}

	return nil
}

// takenBy adapts a find/find-excluding pair into an advisory uniqueness check.
func takenBy[T any](
	find func(ctx context.Context, value string) ([]T, error),
	findExcluding func(ctx context.Context, value, excludeID string) ([]T, error),
) func(ctx context.Context, value, excludeID string) (bool, error) {
	return func(ctx context.Context, value, excludeID string) (bool, error) {
		var (
			rows []T
			err  error
		)

		if excludeID == "" {
			rows, err = find(ctx, value)
		} else {
			rows, err = findExcluding(ctx, value, excludeID)
		}
		if err != nil {
			return false, err
		}

		return len(rows) > 0, nil
	}
}
