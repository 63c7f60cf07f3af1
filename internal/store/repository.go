package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// Descriptor tells a Repository how one entity is stored and searched.
type Descriptor[F any] struct {
	// Collection is the backing collection name.
	Collection string
	// EntityName is recorded in audit entries.
	EntityName string
	// DefaultSort applies when a list request has no orderBy.
	DefaultSort string
	// UniqueFields each get a unique index.
	UniqueFields []string
	// Defaults are merged under the payload on insert.
	Defaults map[string]any
	// DisplayField is the projected field for autocomplete.
	DisplayField string
	// SearchFields are matched case-insensitively by autocomplete.
	SearchFields []string
	// ApplyFilter appends entity-specific list predicates.
	ApplyFilter func(q *query.Builder, f F)
}

// Repository is the CRUD implementation shared by every entity. T is the
// decoded entity type and F its list filter.
type Repository[T any, F any] struct {
	Base
	desc  Descriptor[F]
	audit AuditLogger
	open  func(ctx context.Context, ensure bool) (collection, error)

	mu      sync.Mutex
	ensured bool
}

// NewRepository creates a Repository for the described entity.
func NewRepository[T any, F any](base Base, audit AuditLogger, desc Descriptor[F]) *Repository[T, F] {
	r := &Repository[T, F]{Base: base, desc: desc, audit: audit}
	r.open = r.liveCollection

	return r
}

// EntityName returns the audit entity name.
func (r *Repository[T, F]) EntityName() string {
	return r.desc.EntityName
}

// liveCollection returns the backing collection handle. With ensure set the
// collection and its indexes are created first if missing.
func (r *Repository[T, F]) liveCollection(ctx context.Context, ensure bool) (collection, error) {
	coll, err := r.Pool.Collection(ctx, r.desc.Collection)
	if err != nil {
		return nil, err
	}

	if ensure {
		if err := r.ensureCollection(ctx, coll); err != nil {
			return nil, err
		}
	}

	return coll, nil
}

// ensureCollection creates the collection and its unique indexes on first
// use. Existing collections and indexes are left as they are.
func (r *Repository[T, F]) ensureCollection(ctx context.Context, coll *mongo.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ensured {
		return nil
	}

	err := coll.Database().CreateCollection(ctx, r.desc.Collection)
	if err != nil && !isNamespaceExists(err) {
		return fmt.Errorf("creating collection %s: %w", r.desc.Collection, err)
	}

	if len(r.desc.UniqueFields) > 0 {
		indexes := make([]mongo.IndexModel, 0, len(r.desc.UniqueFields))
		for _, field := range r.desc.UniqueFields {
			indexes = append(indexes, mongo.IndexModel{
				Keys:    bson.D{{Key: field, Value: 1}},
				Options: options.Index().SetUnique(true),
			})
		}

		if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", r.desc.Collection, err)
		}
	}

	r.ensured = true

	return nil
}

// Create inserts a record, records a create audit entry carrying the
// submitted payload, then re-reads the stored record.
func (r *Repository[T, F]) Create(ctx context.Context, data models.Payload, actor *models.Actor) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, true)
	if err != nil {
		return nil, err
	}

	values := data.Fields()

	doc := bson.M{}
	for k, v := range r.desc.Defaults {
		doc[k] = v
	}
	for k, v := range values {
		doc[k] = v
	}

	ts := now()
	doc["createdAt"] = ts
	doc["updatedAt"] = ts

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, mapWriteError("inserting "+r.desc.EntityName, err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("inserting %s: unexpected id type %T", r.desc.EntityName, res.InsertedID)
	}

	if err := r.logAudit(ctx, models.ActionCreate, id.Hex(), values, actor); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id.Hex())
}

// Update applies data as a partial update. The audit entry carries only the
// supplied fields. Returns ErrNotFound, with no audit entry, when nothing matched.
func (r *Repository[T, F]) Update(ctx context.Context, id string, data models.Payload, actor *models.Actor) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, false)
	if err != nil {
		return nil, err
	}

	values := data.Fields()

	set := bson.M{"updatedAt": now()}
	for k, v := range values {
		set[k] = v
	}

	res, err := coll.UpdateOne(ctx, bson.M{query.IDField: query.ParseID(id)}, bson.M{"$set": set})
	if err != nil {
		return nil, mapWriteError("updating "+r.desc.EntityName, err)
	}

	if res.MatchedCount == 0 {
		return nil, models.ErrNotFound
	}

	if err := r.logAudit(ctx, models.ActionUpdate, id, values, actor); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Destroy deletes the record and records a delete audit entry with no values.
func (r *Repository[T, F]) Destroy(ctx context.Context, id string, actor *models.Actor) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, false)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{query.IDField: query.ParseID(id)})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", r.desc.EntityName, err)
	}

	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}

	return r.logAudit(ctx, models.ActionDelete, id, nil, actor)
}

// logAudit records a committed mutation. A failure leaves the mutation in
// place and is reported as ErrAuditWrite.
func (r *Repository[T, F]) logAudit(ctx context.Context, action, id string, values map[string]any, actor *models.Actor) error {
	metrics.MutationsTotal.WithLabelValues(r.desc.EntityName, action).Inc()

	_, err := r.audit.Log(ctx, LogParams{
		EntityName: r.desc.EntityName,
		EntityID:   id,
		Action:     action,
		Values:     values,
	}, actor)
	if err == nil {
		return nil
	}

	metrics.AuditWriteFailures.WithLabelValues(r.desc.EntityName, action).Inc()
	r.Log.WithError(err).WithFields(logrus.Fields{
		"entity":        r.desc.EntityName,
		"entity_id":     id,
		"action":        action,
		"partial_write": true,
	}).Error("audit log write failed after mutation")

	return fmt.Errorf("%w: %w", models.ErrAuditWrite, err)
}

// Count returns the number of records matching the criteria. A nil group counts all.
func (r *Repository[T, F]) Count(ctx context.Context, criteria *query.Group) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, false)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, query.Filter(criteria))
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.desc.EntityName, err)
	}

	return n, nil
}

// FindByID returns the record with the given id, or ErrNotFound. A malformed
// id is looked up as an id no record carries, so it also yields ErrNotFound.
func (r *Repository[T, F]) FindByID(ctx context.Context, id string) (*T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, false)
	if err != nil {
		return nil, err
	}

	q := query.ForList(0, 0, "")
	q.AppendID(query.IDField, id)

	var rec T
	if err := coll.FindOne(ctx, q.Filter()).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}

		return nil, fmt.Errorf("finding %s: %w", r.desc.EntityName, err)
	}

	return &rec, nil
}

// FindByField returns every record whose field equals value.
func (r *Repository[T, F]) FindByField(ctx context.Context, field string, value any) ([]T, error) {
	q := query.ForList(0, 0, "")
	q.AppendEqual(field, value)

	return r.find(ctx, q)
}

// FindByFieldAndNotID is FindByField excluding the record with excludeID.
func (r *Repository[T, F]) FindByFieldAndNotID(ctx context.Context, field string, value any, excludeID string) ([]T, error) {
	q := query.ForList(0, 0, "")
	q.AppendEqual(field, value)
	q.AppendNotEqual(query.IDField, query.ParseID(excludeID))

	return r.find(ctx, q)
}

func (r *Repository[T, F]) find(ctx context.Context, q *query.Builder) ([]T, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, false)
	if err != nil {
		return nil, err
	}

	rows, err := findAll[T](ctx, coll, q.Filter(), q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.desc.EntityName, err)
	}

	return rows, nil
}

// FindAndCountAll returns a page of records matching f together with the
// total match count. The page and the count come from independent
// concurrent queries and are not a consistent snapshot.
func (r *Repository[T, F]) FindAndCountAll(ctx context.Context, f F, opts models.ListOptions) (*models.Page[T], error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, false)
	if err != nil {
		return nil, err
	}

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = r.desc.DefaultSort
	}

	q := query.ForList(opts.Limit, opts.Offset, orderBy)
	if r.desc.ApplyFilter != nil {
		r.desc.ApplyFilter(q, f)
	}

	filter := q.Filter()
	page := &models.Page[T]{Rows: []T{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := findAll[T](gctx, coll, filter, q.FindOptions())
		if err != nil {
			return fmt.Errorf("querying %s: %w", r.desc.EntityName, err)
		}
		page.Rows = rows

		return nil
	})

	g.Go(func() error {
		n, err := coll.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("counting %s: %w", r.desc.EntityName, err)
		}
		page.Count = n

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return page, nil
}

// FindAllAutocomplete matches search against the id and each search field,
// any one sufficing, and returns {id, display field} pairs sorted by the
// display field.
func (r *Repository[T, F]) FindAllAutocomplete(ctx context.Context, search string, limit int64) ([]models.AutocompleteOption, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	coll, err := r.open(ctx, false)
	if err != nil {
		return nil, err
	}

	display := r.desc.DisplayField
	q := query.ForAutocomplete(limit, display+"_ASC")

	if search != "" {
		q.AppendID(query.IDField, search)
		for _, field := range r.desc.SearchFields {
			q.AppendContainsFold(field, search)
		}
	}

	opts := q.FindOptions().SetProjection(bson.M{query.IDField: 1, display: 1})

	docs, err := findAll[bson.M](ctx, coll, q.Filter(), opts)
	if err != nil {
		return nil, fmt.Errorf("autocomplete %s: %w", r.desc.EntityName, err)
	}

	out := make([]models.AutocompleteOption, 0, len(docs))
	for _, d := range docs {
		id, _ := d[query.IDField].(primitive.ObjectID)
		value, _ := d[display].(string)
		out = append(out, models.AutocompleteOption{ID: id, Field: display, Value: value})
	}

	return out, nil
}
