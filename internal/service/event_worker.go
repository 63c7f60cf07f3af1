package service

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/tallyhq/tally/internal/domain"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/models"
)

// EventTypeAudit is the change-feed event type for persisted audit entries.
const EventTypeAudit = "audit"

// Broadcaster fans change events out to connected subscribers.
type Broadcaster interface {
	BroadcastEvent(eventType, entity string, data json.RawMessage)
}

var _ domain.EventPublisher = (*EventWorker)(nil)

// EventWorker buffers committed audit entries and forwards them to a
// Broadcaster from a single worker goroutine.
type EventWorker struct {
	out  Broadcaster
	log  *logrus.Logger
	jobs chan models.AuditEntry
}

// NewEventWorker creates an EventWorker with the given queue capacity.
func NewEventWorker(out Broadcaster, log *logrus.Logger, queueSize int) *EventWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &EventWorker{
		out:  out,
		log:  log,
		jobs: make(chan models.AuditEntry, queueSize),
	}
}

// Publish queues an entry. Non-blocking; drops the entry if the queue is full.
func (w *EventWorker) Publish(entry models.AuditEntry) {
	select {
	case w.jobs <- entry:
		metrics.EventQueueDepth.Set(float64(len(w.jobs)))
	default:
		metrics.EventsDropped.Inc()
		w.log.WithFields(logrus.Fields{
			"entity": entry.EntityName,
			"action": entry.Action,
		}).Warn("event queue full, dropping entry")
	}
}

// Run forwards entries until the context is cancelled, then drains remaining entries.
func (w *EventWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case entry := <-w.jobs:
			w.process(entry)
		}
	}
}

func (w *EventWorker) drain() {
	for {
		select {
		case entry := <-w.jobs:
			w.process(entry)
		default:
			metrics.EventQueueDepth.Set(0)
			return
		}
	}
}

func (w *EventWorker) process(entry models.AuditEntry) {
	metrics.EventQueueDepth.Set(float64(len(w.jobs)))

	data, err := json.Marshal(entry)
	if err != nil {
		w.log.WithError(err).Warn("event encode failed")
		return
	}

	w.out.BroadcastEvent(EventTypeAudit, entry.EntityName, data)
}
