package ws

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 1000
	defaultBufferMaxAge = 1 * time.Hour
)

// EventBuffer stores recent events per entity for replay on reconnect.
type EventBuffer struct {
	mu     sync.RWMutex
	events map[string][]Event
	maxAge time.Duration
	maxLen int
	stop   chan struct{}
	now    func() time.Time
}

// NewEventBuffer creates an EventBuffer with the given limits and starts
// a background goroutine that removes stale entity streams every 10 minutes.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	eb := &EventBuffer{
		events: make(map[string][]Event),
		maxAge: maxAge,
		maxLen: maxLen,
		stop:   make(chan struct{}),
		now:    time.Now,
	}
	go eb.cleanupLoop()
	return eb
}

// Stop halts the background cleanup goroutine.
func (eb *EventBuffer) Stop() {
	close(eb.stop)
}

func (eb *EventBuffer) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-eb.stop:
			return
		case <-ticker.C:
			eb.evictStale()
		}
	}
}

func (eb *EventBuffer) evictStale() {
	cutoff := eb.now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for entity, buf := range eb.events {
		if len(buf) == 0 || buf[len(buf)-1].Time.Before(cutoff) {
			delete(eb.events, entity)
		}
	}
}

// Append stores an event for potential replay, evicting old entries.
func (eb *EventBuffer) Append(event *Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	buf := eb.events[event.Entity]

	// Evict expired events from the front.
	cutoff := eb.now().Add(-eb.maxAge)
	start := 0
	for start < len(buf) && buf[start].Time.Before(cutoff) {
		start++
	}
	if start > 0 {
		buf = buf[start:]
	}

	buf = append(buf, *event)
	if len(buf) > eb.maxLen {
		buf = buf[len(buf)-eb.maxLen:]
	}

	eb.events[event.Entity] = buf
}

// Since returns events with ID > lastEventID for the given entities, ordered
// by ID. An empty entity list means every buffered entity.
func (eb *EventBuffer) Since(entities []string, lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	var result []Event
	for _, entity := range eb.keys(entities) {
		buf := eb.events[entity]

		// Binary search for the first event with ID > lastEventID.
		lo, _ := slices.BinarySearchFunc(buf, lastEventID+1, func(e Event, target uint64) int {
			return cmp.Compare(e.ID, target)
		})

		result = append(result, buf[lo:]...)
	}

	slices.SortFunc(result, func(a, b Event) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return result
}

// OldestID returns the oldest buffered event ID across the given entities,
// or 0 if none are buffered.
func (eb *EventBuffer) OldestID(entities []string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	var oldest uint64
	for _, entity := range eb.keys(entities) {
		buf := eb.events[entity]
		if len(buf) == 0 {
			continue
		}
		if oldest == 0 || buf[0].ID < oldest {
			oldest = buf[0].ID
		}
	}

	return oldest
}

// keys must be called with mu held.
func (eb *EventBuffer) keys(entities []string) []string {
	if len(entities) > 0 {
		return entities
	}

	all := make([]string, 0, len(eb.events))
	for entity := range eb.events {
		all = append(all, entity)
	}

	return all
}
