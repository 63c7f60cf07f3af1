package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/store"
	"github.com/tallyhq/tally/internal/store/storetest"
)

// recordingPublisher captures published audit entries.
type recordingPublisher struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (p *recordingPublisher) Publish(e models.AuditEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
}

func (p *recordingPublisher) all() []models.AuditEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]models.AuditEntry(nil), p.entries...)
}

// testEnv bundles the stores wired against one fresh database.
type testEnv struct {
	base   store.Base
	audit  *store.AuditStore
	items  *store.ItemStore
	roles  *store.RoleStore
	users  *store.UserStore
	events *recordingPublisher
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pub := &recordingPublisher{}
	base := store.Base{Pool: storetest.SetupPool(t), Log: storetest.Logger(), Events: pub}
	audit := store.NewAuditStore(base)

	return &testEnv{
		base:   base,
		audit:  audit,
		items:  store.NewItemStore(base, audit),
		roles:  store.NewRoleStore(base, audit),
		users:  store.NewUserStore(base, audit),
		events: pub,
	}
}

func ptr[T any](v T) *T { return &v }

func auditFor(t *testing.T, env *testEnv, entityID string) []models.AuditEntry {
	t.Helper()

	page, err := env.audit.FindAndCountAll(context.Background(), models.AuditFilter{EntityID: entityID}, models.ListOptions{OrderBy: "id_ASC"})
	if err != nil {
		t.Fatalf("FindAndCountAll audit: %v", err)
	}

	return page.Rows
}
