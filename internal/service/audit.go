package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/models"
)

// AuditQueryStore is the data-access interface AuditService depends on.
type AuditQueryStore = domain.AuditService

// Compile-time check: *AuditService must satisfy domain.AuditService.
var _ domain.AuditService = (*AuditService)(nil)

// AuditService wraps AuditQueryStore with query logging.
type AuditService struct {
	store AuditQueryStore
	log   *logrus.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(store AuditQueryStore, log *logrus.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// FindAndCountAll returns one page of audit entries and the total match count.
func (s *AuditService) FindAndCountAll(
	ctx context.Context, filter models.AuditFilter, opts models.ListOptions,
) (*models.Page[models.AuditEntry], error) {
	page, err := s.store.FindAndCountAll(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"action":       filter.Action,
		"entity_id":    filter.EntityID,
		"entity_names": filter.EntityNames,
		"count":        page.Count,
	}).Debug("audit.query")

	return page, nil
}
