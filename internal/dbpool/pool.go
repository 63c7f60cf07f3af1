// Package dbpool owns the process-wide MongoDB client: one cached
// connection with a liveness check and reconnection when it goes stale.
package dbpool

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"

	"github.com/tallyhq/tally/internal/metrics"
)

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("connection manager closed")

// Options configures the client. Zero durations and sizes keep driver defaults.
type Options struct {
	URI              string
	Database         string
	ReadPreference   string
	MinPoolSize      uint64
	MaxPoolSize      uint64
	ConnectTimeout   time.Duration
	SocketTimeout    time.Duration
	MaxIdleTime      time.Duration
	LivenessInterval time.Duration
}

// Pool caches a single *mongo.Client shared by every store. The client is
// pinged at most once per LivenessInterval; a failed ping discards the
// client and dials a new one. The mutex only guards fields: pings and dials
// run outside it, and concurrent callers share one refresh.
type Pool struct {
	mu          sync.Mutex
	opts        Options
	clientOpts  *options.ClientOptions
	client      *mongo.Client
	dbName      string
	lastChecked time.Time
	live        bool
	closed      bool
	log         *logrus.Logger
	now         func() time.Time

	refreshes singleflight.Group
}

// NewPool creates the connection manager and dials the store once so that
// misconfiguration fails at startup.
func NewPool(ctx context.Context, opts Options, log *logrus.Logger) (*Pool, error) {
	clientOpts, err := clientOptions(opts)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		opts:       opts,
		clientOpts: clientOpts,
		dbName:     opts.Database,
		log:        log,
		now:        time.Now,
	}

	if _, err := p.Database(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

func clientOptions(opts Options) (*options.ClientOptions, error) {
	co := options.Client().ApplyURI(opts.URI)

	if opts.ReadPreference != "" {
		mode, err := readpref.ModeFromString(opts.ReadPreference)
		if err != nil {
			return nil, fmt.Errorf("parsing read preference: %w", err)
		}

		rp, err := readpref.New(mode)
		if err != nil {
			return nil, fmt.Errorf("building read preference: %w", err)
		}

		co.SetReadPreference(rp)
	}

	if opts.MinPoolSize > 0 {
		co.SetMinPoolSize(opts.MinPoolSize)
	}
	if opts.MaxPoolSize > 0 {
		co.SetMaxPoolSize(opts.MaxPoolSize)
	}
	if opts.ConnectTimeout > 0 {
		co.SetConnectTimeout(opts.ConnectTimeout)
		co.SetServerSelectionTimeout(opts.ConnectTimeout)
	}
	if opts.SocketTimeout > 0 {
		co.SetSocketTimeout(opts.SocketTimeout)
	}
	if opts.MaxIdleTime > 0 {
		co.SetMaxConnIdleTime(opts.MaxIdleTime)
	}

	if err := co.Validate(); err != nil {
		return nil, fmt.Errorf("validating client options: %w", err)
	}

	return co, nil
}

// Database returns the handle for the configured database, dialing or
// re-dialing the client when it is missing or failed its liveness check.
func (p *Pool) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := p.liveClient(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	name := p.dbName
	p.mu.Unlock()

	return client.Database(name), nil
}

// Collection returns a handle for the named collection.
func (p *Pool) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := p.Database(ctx)
	if err != nil {
		return nil, err
	}

	return db.Collection(name), nil
}

func (p *Pool) liveClient(ctx context.Context) (*mongo.Client, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if client := p.cachedLocked(); client != nil {
		p.mu.Unlock()
		return client, nil
	}
	p.mu.Unlock()

	// The refresh outlives any single caller; each caller still honours its own ctx.
	ch := p.refreshes.DoChan("refresh", func() (any, error) {
		return p.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Client), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for database: %w", ctx.Err())
	}
}

// cachedLocked returns the cached client when it passed a ping within the
// liveness interval.
func (p *Pool) cachedLocked() *mongo.Client {
	if p.client != nil && p.live && p.now().Sub(p.lastChecked) < p.opts.LivenessInterval {
		return p.client
	}
	return nil
}

// refresh pings the cached client and re-dials when the ping fails or no
// client is cached. Driver timeouts bound the network calls.
func (p *Pool) refresh(ctx context.Context) (*mongo.Client, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if client := p.cachedLocked(); client != nil {
		p.mu.Unlock()
		return client, nil
	}
	stale := p.client
	p.mu.Unlock()

	if stale != nil {
		if err := stale.Ping(ctx, nil); err == nil {
			p.markChecked(stale, true)
			return stale, nil
		}

		p.log.WithField("db", p.redactedURI()).Warn("database connection stale, reconnecting")
		p.discard(ctx, stale)
		metrics.DBReconnects.Inc()
	}

	client, err := mongo.Connect(ctx, p.clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx) //nolint:errcheck // best-effort cleanup after failed dial.

		return nil, fmt.Errorf("pinging database: %w", err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		client.Disconnect(ctx) //nolint:errcheck // pool closed while dialing.

		return nil, ErrClosed
	}
	p.client = client
	p.live = true
	p.lastChecked = p.now()
	p.mu.Unlock()

	p.log.WithField("db", p.redactedURI()).Info("database connected")

	return client, nil
}

// markChecked records a ping result for client, unless it was replaced meanwhile.
func (p *Pool) markChecked(client *mongo.Client, live bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != client {
		return
	}
	p.live = live
	if live {
		p.lastChecked = p.now()
	}
}

// discard drops client from the cache and disconnects it.
func (p *Pool) discard(ctx context.Context, client *mongo.Client) {
	p.mu.Lock()
	if p.client == client {
		p.client = nil
		p.live = false
	}
	p.mu.Unlock()

	if err := client.Disconnect(ctx); err != nil {
		p.log.WithError(err).Warn("failed to disconnect stale database client")
	}
}

// HealthCheck pings the store regardless of the liveness cache.
func (p *Pool) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	client, closed := p.client, p.closed
	p.mu.Unlock()

	if closed {
		return ErrClosed
	}

	if client == nil {
		_, err := p.liveClient(ctx)
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		p.markChecked(client, false)

		return fmt.Errorf("health check ping: %w", err)
	}

	p.markChecked(client, true)

	return nil
}

// Connected reports whether a client is cached and its most recent ping succeeded.
func (p *Pool) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.client != nil && p.live && !p.closed
}

// SetDatabaseName switches the database used by subsequent Database calls.
// The cached client is kept.
func (p *Pool) SetDatabaseName(name string) {
	p.mu.Lock()
	p.dbName = name
	p.mu.Unlock()
}

// DatabaseName returns the database currently in use.
func (p *Pool) DatabaseName() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.dbName
}

// String returns the connection URI and database name with credentials masked.
func (p *Pool) String() string {
	return p.redactedURI() + " (" + p.DatabaseName() + ")"
}

// Close disconnects the client. Further calls to Database return ErrClosed.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	if p.client == nil {
		return nil
	}

	err := p.client.Disconnect(ctx)
	p.client = nil
	p.live = false

	if err != nil {
		return fmt.Errorf("disconnecting database: %w", err)
	}

	return nil
}

var credentialsPattern = regexp.MustCompile(`//[^/@]+@`)

func (p *Pool) redactedURI() string {
	return RedactURI(p.opts.URI)
}

// RedactURI masks the userinfo section of a connection string.
func RedactURI(uri string) string {
	return credentialsPattern.ReplaceAllString(uri, "//***:***@")
}
