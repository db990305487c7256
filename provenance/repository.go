package provenance

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository provides paged access to stored events, ordered by ID.
type Repository interface {
	// Events returns up to maxResults events whose ID is >= firstID.
	Events(firstID int64, maxResults int) ([]*Event, error)
}

// VolatileRepository is an in-memory Repository. It is safe for
// concurrent use.
type VolatileRepository struct {
	mu     sync.RWMutex
	events []*Event
	nextID int64
}

// NewVolatileRepository creates an empty in-memory repository.
func NewVolatileRepository() *VolatileRepository {
	return &VolatileRepository{}
}

// Register stores an event and assigns it the next sequential ID.
// A zero Time defaults to the current wall clock and an empty
// FlowFileUUID gets a fresh random UUID. Returns the assigned ID.
func (r *VolatileRepository) Register(e *Event) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = r.nextID
	r.nextID++
	if e.Time == 0 {
		e.Time = time.Now().UnixMilli()
	}
	if e.FlowFileUUID == "" {
		e.FlowFileUUID = uuid.NewString()
	}
	r.events = append(r.events, e)
	return e.ID
}

// Count returns the number of stored events.
func (r *VolatileRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Events returns up to maxResults events with ID >= firstID.
func (r *VolatileRepository) Events(firstID int64, maxResults int) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if firstID < 0 {
		firstID = 0
	}
	if firstID >= int64(len(r.events)) {
		return nil, nil
	}
	end := firstID + int64(maxResults)
	if end > int64(len(r.events)) {
		end = int64(len(r.events))
	}
	page := make([]*Event, end-firstID)
	copy(page, r.events[firstID:end])
	return page, nil
}
