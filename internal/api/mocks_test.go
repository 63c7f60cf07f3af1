package api_test

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// mockItemService implements domain.ItemService for testing.
type mockItemService struct {
	mu    sync.Mutex
	calls []string

	createFn       func(ctx context.Context, data models.Payload, actor *models.Actor) (*models.Item, error)
	updateFn       func(ctx context.Context, id string, data models.Payload, actor *models.Actor) (*models.Item, error)
	destroyFn      func(ctx context.Context, id string, actor *models.Actor) error
	getFn          func(ctx context.Context, id string) (*models.Item, error)
	listFn         func(ctx context.Context, filter models.ItemFilter, opts models.ListOptions) (*models.Page[models.Item], error)
	autocompleteFn func(ctx context.Context, search string, limit int64) ([]models.AutocompleteOption, error)
}

func (m *mockItemService) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockItemService) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockItemService) Create(ctx context.Context, data models.Payload, actor *models.Actor) (*models.Item, error) {
	m.record("Create")
	return m.createFn(ctx, data, actor)
}

func (m *mockItemService) Update(ctx context.Context, id string, data models.Payload, actor *models.Actor) (*models.Item, error) {
	m.record("Update")
	return m.updateFn(ctx, id, data, actor)
}

func (m *mockItemService) Destroy(ctx context.Context, id string, actor *models.Actor) error {
	m.record("Destroy")
	return m.destroyFn(ctx, id, actor)
}

func (m *mockItemService) Count(context.Context, *query.Group) (int64, error) {
	m.record("Count")
	return 0, nil
}

func (m *mockItemService) FindByID(ctx context.Context, id string) (*models.Item, error) {
	m.record("FindByID")
	return m.getFn(ctx, id)
}

func (m *mockItemService) FindAndCountAll(ctx context.Context, filter models.ItemFilter, opts models.ListOptions) (*models.Page[models.Item], error) {
	m.record("FindAndCountAll")
	return m.listFn(ctx, filter, opts)
}

func (m *mockItemService) FindAllAutocomplete(ctx context.Context, search string, limit int64) ([]models.AutocompleteOption, error) {
	m.record("FindAllAutocomplete")
	return m.autocompleteFn(ctx, search, limit)
}

func (m *mockItemService) FindByName(context.Context, string) ([]models.Item, error) {
	return nil, nil
}

func (m *mockItemService) FindByNameAndNotID(context.Context, string, string) ([]models.Item, error) {
	return nil, nil
}

// mockUserService implements domain.UserService; only Create is wired.
type mockUserService struct {
	mockItemService

	createUserFn func(ctx context.Context, data models.Payload, actor *models.Actor) (*models.User, error)
}

func (m *mockUserService) Create(ctx context.Context, data models.Payload, actor *models.Actor) (*models.User, error) {
	m.record("Create")
	return m.createUserFn(ctx, data, actor)
}

func (m *mockUserService) Update(context.Context, string, models.Payload, *models.Actor) (*models.User, error) {
	m.record("Update")
	return nil, models.ErrNotFound
}

func (m *mockUserService) FindByID(context.Context, string) (*models.User, error) {
	return nil, models.ErrNotFound
}

func (m *mockUserService) FindAndCountAll(context.Context, models.UserFilter, models.ListOptions) (*models.Page[models.User], error) {
	return &models.Page[models.User]{Rows: []models.User{}}, nil
}

func (m *mockUserService) FindByUsername(context.Context, string) ([]models.User, error) {
	return nil, nil
}

func (m *mockUserService) FindByUsernameAndNotID(context.Context, string, string) ([]models.User, error) {
	return nil, nil
}

func (m *mockUserService) FindByEmail(context.Context, string) ([]models.User, error) {
	return nil, nil
}

func (m *mockUserService) FindByFieldAndNotID(context.Context, string, any, string) ([]models.User, error) {
	return nil, nil
}

// mockAuditService implements domain.AuditService.
type mockAuditService struct {
	gotFilter models.AuditFilter
	gotOpts   models.ListOptions
	page      *models.Page[models.AuditEntry]
	err       error
}

func (m *mockAuditService) FindAndCountAll(_ context.Context, filter models.AuditFilter, opts models.ListOptions) (*models.Page[models.AuditEntry], error) {
	m.gotFilter = filter
	m.gotOpts = opts
	if m.page == nil {
		return &models.Page[models.AuditEntry]{Rows: []models.AuditEntry{}}, m.err
	}
	return m.page, m.err
}

// mockHealth implements api.HealthChecker.
type mockHealth struct {
	err error
}

func (m *mockHealth) HealthCheck(context.Context) error {
	return m.err
}

// memoryItems is an in-memory domain.ItemService used for end-to-end flows.
type memoryItems struct {
	mockItemService

	mu    sync.Mutex
	items map[string]models.Item
}

func newMemoryItems() *memoryItems {
	return &memoryItems{items: map[string]models.Item{}}
}

func (m *memoryItems) Create(_ context.Context, data models.Payload, _ *models.Actor) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	item := models.Item{ID: primitive.NewObjectID(), CreatedAt: now, UpdatedAt: now}
	apply(&item, data.Fields())
	m.items[item.ID.Hex()] = item

	return &item, nil
}

func (m *memoryItems) Update(_ context.Context, id string, data models.Payload, _ *models.Actor) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	apply(&item, data.Fields())
	item.UpdatedAt = time.Now().UTC()
	m.items[id] = item

	return &item, nil
}

func (m *memoryItems) Destroy(_ context.Context, id string, _ *models.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, id)

	return nil
}

func (m *memoryItems) FindByID(_ context.Context, id string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	return &item, nil
}

func apply(item *models.Item, fields map[string]any) {
	if v, ok := fields["name"].(string); ok {
		item.Name = v
	}
	if v, ok := fields["description"].(string); ok {
		item.Description = &v
	}
}
