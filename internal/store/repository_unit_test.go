package store

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tallyhq/tally/internal/models"
)

// callLog records the order of collection and audit calls across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeCollection struct {
	log *callLog

	insertedID any
	matched    int64
	deleted    int64
	found      bson.M
	rows       []any
	count      int64

	lastSet bson.M
}

func (c *fakeCollection) InsertOne(_ context.Context, _ any, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	c.log.add("insert")
	return &mongo.InsertOneResult{InsertedID: c.insertedID}, nil
}

func (c *fakeCollection) UpdateOne(_ context.Context, _, update any, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	c.log.add("update")
	if u, ok := update.(bson.M); ok {
		c.lastSet, _ = u["$set"].(bson.M)
	}
	return &mongo.UpdateResult{MatchedCount: c.matched, ModifiedCount: c.matched}, nil
}

func (c *fakeCollection) DeleteOne(_ context.Context, _ any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	c.log.add("delete")
	return &mongo.DeleteResult{DeletedCount: c.deleted}, nil
}

func (c *fakeCollection) FindOne(_ context.Context, _ any, _ ...*options.FindOneOptions) *mongo.SingleResult {
	c.log.add("findOne")
	if c.found == nil {
		return mongo.NewSingleResultFromDocument(bson.M{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(c.found, nil, nil)
}

func (c *fakeCollection) Find(_ context.Context, _ any, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	c.log.add("find")
	return mongo.NewCursorFromDocuments(c.rows, nil, nil)
}

func (c *fakeCollection) CountDocuments(_ context.Context, _ any, _ ...*options.CountOptions) (int64, error) {
	c.log.add("count")
	return c.count, nil
}

type fakeAuditLogger struct {
	log    *callLog
	err    error
	params []LogParams
	actors []*models.Actor
}

func (a *fakeAuditLogger) Log(_ context.Context, p LogParams, actor *models.Actor) (*models.AuditEntry, error) {
	a.log.add("audit:" + p.Action)
	a.params = append(a.params, p)
	a.actors = append(a.actors, actor)
	if a.err != nil {
		return nil, a.err
	}
	return &models.AuditEntry{EntityName: p.EntityName, EntityID: p.EntityID, Action: p.Action, Values: p.Values}, nil
}

func newFakeItemRepository(t *testing.T, coll *fakeCollection, audit *fakeAuditLogger) *Repository[models.Item, models.ItemFilter] {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := NewRepository[models.Item](Base{Log: logger}, audit, ItemDescriptor)
	r.open = func(context.Context, bool) (collection, error) {
		return coll, nil
	}

	return r
}

func strPtr(s string) *string { return &s }

func TestRepositoryCreate_AuditsBetweenInsertAndReread(t *testing.T) {
	log := &callLog{}
	id := primitive.NewObjectID()
	coll := &fakeCollection{log: log, insertedID: id, found: bson.M{"_id": id, "name": "Widget"}}
	audit := &fakeAuditLogger{log: log}
	r := newFakeItemRepository(t, coll, audit)

	actor := &models.Actor{ID: "u-1", Email: "ops@example.com"}
	item, err := r.Create(context.Background(), &models.CreateItemRequest{Name: "Widget", Description: strPtr("blue")}, actor)
	require.NoError(t, err)
	assert.Equal(t, id, item.ID)
	assert.Equal(t, "Widget", item.Name)

	assert.Equal(t, []string{"insert", "audit:" + models.ActionCreate, "findOne"}, log.list())

	require.Len(t, audit.params, 1)
	p := audit.params[0]
	assert.Equal(t, "item", p.EntityName)
	assert.Equal(t, id.Hex(), p.EntityID)
	assert.Equal(t, map[string]any{"name": "Widget", "description": "blue"}, p.Values)
	assert.Same(t, actor, audit.actors[0])
}

func TestRepositoryCreate_AuditFailureKeepsInsert(t *testing.T) {
	log := &callLog{}
	coll := &fakeCollection{log: log, insertedID: primitive.NewObjectID()}
	audit := &fakeAuditLogger{log: log, err: errors.New("audit collection unavailable")}
	r := newFakeItemRepository(t, coll, audit)

	_, err := r.Create(context.Background(), &models.CreateItemRequest{Name: "Widget"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrAuditWrite)
	assert.ErrorContains(t, err, "audit collection unavailable")

	// The insert is not rolled back and the record is not re-read.
	assert.Equal(t, []string{"insert", "audit:" + models.ActionCreate}, log.list())
}

func TestRepositoryCreate_UnexpectedIDType(t *testing.T) {
	log := &callLog{}
	coll := &fakeCollection{log: log, insertedID: "not-an-object-id"}
	audit := &fakeAuditLogger{log: log}
	r := newFakeItemRepository(t, coll, audit)

	_, err := r.Create(context.Background(), &models.CreateItemRequest{Name: "Widget"}, nil)
	require.Error(t, err)
	assert.Empty(t, audit.params)
}

func TestRepositoryUpdate_AuditsOnlyDelta(t *testing.T) {
	log := &callLog{}
	id := primitive.NewObjectID()
	coll := &fakeCollection{log: log, matched: 1, found: bson.M{"_id": id, "name": "Renamed", "description": "blue"}}
	audit := &fakeAuditLogger{log: log}
	r := newFakeItemRepository(t, coll, audit)

	item, err := r.Update(context.Background(), id.Hex(), &models.PatchItemRequest{Name: strPtr("Renamed")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", item.Name)

	assert.Equal(t, []string{"update", "audit:" + models.ActionUpdate, "findOne"}, log.list())

	require.Len(t, audit.params, 1)
	assert.Equal(t, id.Hex(), audit.params[0].EntityID)
	assert.Equal(t, map[string]any{"name": "Renamed"}, audit.params[0].Values)

	// The stored update also stamps updatedAt, which the audit entry leaves out.
	assert.Equal(t, "Renamed", coll.lastSet["name"])
	assert.Contains(t, coll.lastSet, "updatedAt")
	assert.NotContains(t, coll.lastSet, "description")
}

func TestRepositoryUpdate_NoMatchSkipsAudit(t *testing.T) {
	log := &callLog{}
	coll := &fakeCollection{log: log, matched: 0}
	audit := &fakeAuditLogger{log: log}
	r := newFakeItemRepository(t, coll, audit)

	_, err := r.Update(context.Background(), primitive.NewObjectID().Hex(), &models.PatchItemRequest{Name: strPtr("x")}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, []string{"update"}, log.list())
	assert.Empty(t, audit.params)
}

func TestRepositoryDestroy_AuditsWithoutValues(t *testing.T) {
	log := &callLog{}
	coll := &fakeCollection{log: log, deleted: 1}
	audit := &fakeAuditLogger{log: log}
	r := newFakeItemRepository(t, coll, audit)

	id := primitive.NewObjectID().Hex()
	require.NoError(t, r.Destroy(context.Background(), id, &models.Actor{ID: "u-2"}))

	assert.Equal(t, []string{"delete", "audit:" + models.ActionDelete}, log.list())
	require.Len(t, audit.params, 1)
	assert.Equal(t, id, audit.params[0].EntityID)
	assert.Nil(t, audit.params[0].Values)
}

func TestRepositoryDestroy_NoMatchSkipsAudit(t *testing.T) {
	log := &callLog{}
	coll := &fakeCollection{log: log, deleted: 0}
	audit := &fakeAuditLogger{log: log}
	r := newFakeItemRepository(t, coll, audit)

	err := r.Destroy(context.Background(), primitive.NewObjectID().Hex(), nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, audit.params)
}

func TestRepositoryFindAndCountAll_CountIndependentOfPage(t *testing.T) {
	log := &callLog{}
	coll := &fakeCollection{
		log: log,
		rows: []any{
			bson.M{"_id": primitive.NewObjectID(), "name": "a"},
			bson.M{"_id": primitive.NewObjectID(), "name": "b"},
		},
		count: 5,
	}
	r := newFakeItemRepository(t, coll, &fakeAuditLogger{log: log})

	page, err := r.FindAndCountAll(context.Background(), models.ItemFilter{}, models.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Count)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "a", page.Rows[0].Name)
	assert.ElementsMatch(t, []string{"find", "count"}, log.list())
}

func TestRepositoryFindByID_NoDocumentsIsNotFound(t *testing.T) {
	log := &callLog{}
	r := newFakeItemRepository(t, &fakeCollection{log: log}, &fakeAuditLogger{log: log})

	_, err := r.FindByID(context.Background(), "not-a-hex-id")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
