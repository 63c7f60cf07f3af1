package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// AuditCollection is the collection holding audit entries.
const AuditCollection = "auditLogs"

const defaultAuditSort = "createdAt_DESC"

// LogParams describes one mutation to record.
type LogParams struct {
	EntityName string
	EntityID   string
	Action     string
	Values     map[string]any
}

// AuditLogger records audit entries. Repositories depend on this rather
// than on *AuditStore.
type AuditLogger interface {
	Log(ctx context.Context, p LogParams, actor *models.Actor) (*models.AuditEntry, error)
}

// AuditStore provides data access for the append-only audit log.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// Log inserts one audit entry and returns it. A nil actor records null
// actor fields. The entry is published to the change feed after insert.
func (s *AuditStore) Log(ctx context.Context, p LogParams, actor *models.Actor) (*models.AuditEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := s.Pool.Collection(ctx, AuditCollection)
	if err != nil {
		return nil, err
	}

	ts := now()
	entry := &models.AuditEntry{
		ID:         primitive.NewObjectID(),
		EntityID:   p.EntityID,
		EntityName: p.EntityName,
		Action:     p.Action,
		Timestamp:  ts,
		Values:     p.Values,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}

	if !actor.IsZero() {
		if actor.ID != "" {
			entry.ActorID = &actor.ID
		}
		if actor.Email != "" {
			entry.ActorEmail = &actor.Email
		}
	}

	if _, err := coll.InsertOne(ctx, entry); err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}

	s.notify(entry)

	return entry, nil
}

// buildAuditQuery builds AND-mode criteria from an AuditFilter.
func buildAuditQuery(f models.AuditFilter, opts models.ListOptions) *query.Builder {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = defaultAuditSort
	}

	q := query.ForList(opts.Limit, opts.Offset, orderBy)

	q.AppendRange("timestamp", query.Range{Start: f.TimestampStart, End: f.TimestampEnd}, true)

	if f.Action != "" {
		q.AppendEqual("action", f.Action)
	}
	if f.EntityID != "" {
		q.AppendEqual("entityId", f.EntityID)
	}
	if f.ActorEmail != "" {
		q.AppendContainsFold("createdByEmail", f.ActorEmail)
	}
	if len(f.EntityNames) > 0 {
		q.AppendIn("entityName", f.EntityNames)
	}

	return q
}

// FindAndCountAll returns one page of matching entries plus the total match
// count. The two are read by independent concurrent queries, so under
// concurrent writes they may disagree.
func (s *AuditStore) FindAndCountAll(
	ctx context.Context, f models.AuditFilter, opts models.ListOptions,
) (*models.Page[models.AuditEntry], error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := s.Pool.Collection(ctx, AuditCollection)
	if err != nil {
		return nil, err
	}

	q := buildAuditQuery(f, opts)
	filter := q.Filter()

	page := &models.Page[models.AuditEntry]{Rows: []models.AuditEntry{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := findAll[models.AuditEntry](gctx, coll, filter, q.FindOptions())
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}
		page.Rows = rows

		return nil
	})

	g.Go(func() error {
		n, err := coll.CountDocuments(gctx, filter, options.Count().SetCollation(&options.Collation{Locale: "en"}))
		if err != nil {
			return fmt.Errorf("counting audit log: %w", err)
		}
		page.Count = n

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return page, nil
}

// findAll runs a find and decodes every document. An empty result is a
// non-nil empty slice.
func findAll[T any](ctx context.Context, coll collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	rows := []T{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}
