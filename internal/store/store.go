// Package store provides data access for the Tally document store.
//
// AuditStore is the append-only audit log. Repository is one generic
// CRUD implementation parameterized by an entity descriptor; ItemStore,
// RoleStore and UserStore instantiate it. Every mutation is followed by an
// audit entry written through the AuditLogger the repository was built with.
// Shared helpers (timeouts, error mapping, change notification) live here.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// collection is the part of *mongo.Collection the stores read and write through.
type collection interface {
	InsertOne(ctx context.Context, doc any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
}

var _ collection = (*mongo.Collection)(nil)

// Connection hands out collection handles. *dbpool.Pool satisfies it.
type Connection interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
}

// EventPublisher receives every persisted audit entry.
type EventPublisher = domain.EventPublisher

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool   Connection
	Log    *logrus.Logger
	Events EventPublisher
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// notify hands a committed audit entry to the change feed, if one is wired.
func (b *Base) notify(entry *models.AuditEntry) {
	if b.Events == nil || entry == nil {
		return
	}

	b.Events.Publish(*entry)
}

// now returns the current time at the store's millisecond precision, so
// values echoed back to callers equal what a later read returns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// mapWriteError translates driver errors into model sentinels.
func mapWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, models.ErrDuplicateKey)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// isNamespaceExists reports whether err is the "collection already exists" command error.
func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 48 || cmdErr.Name == "NamespaceExists"
	}

	return false
}
