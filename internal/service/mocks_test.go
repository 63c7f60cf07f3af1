package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/query"
)

// mockItemStore records calls and returns configured responses.
type mockItemStore struct {
	mu    sync.Mutex
	calls []string

	create             func(ctx context.Context, data models.Payload, actor *models.Actor) (*models.Item, error)
	update             func(ctx context.Context, id string, data models.Payload, actor *models.Actor) (*models.Item, error)
	findByName         func(ctx context.Context, name string) ([]models.Item, error)
	findByNameAndNotID func(ctx context.Context, name, excludeID string) ([]models.Item, error)
}

func (m *mockItemStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockItemStore) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockItemStore) Create(ctx context.Context, data models.Payload, actor *models.Actor) (*models.Item, error) {
	m.record("Create")
	return m.create(ctx, data, actor)
}

func (m *mockItemStore) Update(ctx context.Context, id string, data models.Payload, actor *models.Actor) (*models.Item, error) {
	m.record("Update")
	return m.update(ctx, id, data, actor)
}

func (m *mockItemStore) Destroy(_ context.Context, _ string, _ *models.Actor) error {
	m.record("Destroy")
	return nil
}

func (m *mockItemStore) Count(_ context.Context, _ *query.Group) (int64, error) {
	m.record("Count")
	return 0, nil
}

func (m *mockItemStore) FindByID(_ context.Context, id string) (*models.Item, error) {
	m.record("FindByID")
	return &models.Item{Name: id}, nil
}

func (m *mockItemStore) FindAndCountAll(_ context.Context, _ models.ItemFilter, _ models.ListOptions) (*models.Page[models.Item], error) {
	m.record("FindAndCountAll")
	return &models.Page[models.Item]{Rows: []models.Item{}}, nil
}

func (m *mockItemStore) FindAllAutocomplete(_ context.Context, _ string, _ int64) ([]models.AutocompleteOption, error) {
	m.record("FindAllAutocomplete")
	return []models.AutocompleteOption{}, nil
}

func (m *mockItemStore) FindByName(ctx context.Context, name string) ([]models.Item, error) {
	m.record("FindByName")
	return m.findByName(ctx, name)
}

func (m *mockItemStore) FindByNameAndNotID(ctx context.Context, name, excludeID string) ([]models.Item, error) {
	m.record("FindByNameAndNotID")
	return m.findByNameAndNotID(ctx, name, excludeID)
}

// mockUserStore embeds only what the uniqueness checks touch; other methods
// panic through the nil embedded interface if a test reaches them.
type mockUserStore struct {
	UserStore

	mu    sync.Mutex
	calls []string

	taken map[string]bool // keyed by "field=value"
}

func (m *mockUserStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockUserStore) lookup(field, value string) []models.User {
	if m.taken[field+"="+value] {
		return []models.User{{Username: value}}
	}
	return []models.User{}
}

func (m *mockUserStore) Create(_ context.Context, _ models.Payload, _ *models.Actor) (*models.User, error) {
	m.record("Create")
	return &models.User{}, nil
}

func (m *mockUserStore) Update(_ context.Context, _ string, _ models.Payload, _ *models.Actor) (*models.User, error) {
	m.record("Update")
	return &models.User{}, nil
}

func (m *mockUserStore) FindByUsername(_ context.Context, username string) ([]models.User, error) {
	m.record("FindByUsername")
	return m.lookup("username", username), nil
}

func (m *mockUserStore) FindByUsernameAndNotID(_ context.Context, username, _ string) ([]models.User, error) {
	m.record("FindByUsernameAndNotID")
	return m.lookup("username", username), nil
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) ([]models.User, error) {
	m.record("FindByEmail")
	return m.lookup("email", email), nil
}

func (m *mockUserStore) FindByFieldAndNotID(_ context.Context, field string, value any, _ string) ([]models.User, error) {
	m.record("FindByFieldAndNotID:" + field)
	s, _ := value.(string)
	return m.lookup(field, s), nil
}

// mockAuditStore returns a fixed page.
type mockAuditStore struct {
	page *models.Page[models.AuditEntry]
	err  error
	got  models.AuditFilter
}

func (m *mockAuditStore) FindAndCountAll(_ context.Context, filter models.AuditFilter, _ models.ListOptions) (*models.Page[models.AuditEntry], error) {
	m.got = filter
	return m.page, m.err
}

type broadcast struct {
	eventType string
	entity    string
	data      json.RawMessage
}

// mockBroadcaster records broadcasts.
type mockBroadcaster struct {
	mu    sync.Mutex
	calls []broadcast
}

func (m *mockBroadcaster) BroadcastEvent(eventType, entity string, data json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, broadcast{eventType: eventType, entity: entity, data: data})
}

func (m *mockBroadcaster) getCalls() []broadcast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]broadcast(nil), m.calls...)
}
