package provenance

// DefaultPageSize is how many events a Cursor fetches per repository
// round trip.
const DefaultPageSize = 10000

// Iterator walks a stream of events. Next advances and reports whether
// an event is available; Err reports the first failure encountered.
type Iterator interface {
	Next() bool
	Event() *Event
	Err() error
}

// Cursor is an Iterator that pages lazily through a Repository.
type Cursor struct {
	repo     Repository
	pageSize int
	page     []*Event
	pos      int
	nextID   int64
	current  *Event
	done     bool
	err      error
}

// NewCursor creates a cursor over repo starting at ID zero. A
// non-positive pageSize falls back to DefaultPageSize.
func NewCursor(repo Repository, pageSize int) *Cursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cursor{repo: repo, pageSize: pageSize}
}

// Next fetches the next event, pulling a fresh page when the current
// one is exhausted.
func (c *Cursor) Next() bool {
	if c.done || c.err != nil {
		return false
	}
	if c.pos >= len(c.page) {
		page, err := c.repo.Events(c.nextID, c.pageSize)
		if err != nil {
			c.err = err
			return false
		}
		if len(page) == 0 {
			c.done = true
			return false
		}
		c.page = page
		c.pos = 0
		c.nextID = page[len(page)-1].ID + 1
	}
	c.current = c.page[c.pos]
	c.pos++
	return true
}

// Event returns the event positioned by the last successful Next.
func (c *Cursor) Event() *Event { return c.current }

// Err returns the first repository error, if any.
func (c *Cursor) Err() error { return c.err }

// SliceIterator walks an in-memory slice of events.
type SliceIterator struct {
	events  []*Event
	pos     int
	current *Event
}

// NewSliceIterator creates an iterator over events.
func NewSliceIterator(events []*Event) *SliceIterator {
	return &SliceIterator{events: events}
}

// Next advances to the next event in the slice.
func (it *SliceIterator) Next() bool {
	if it.pos >= len(it.events) {
		return false
	}
	it.current = it.events[it.pos]
	it.pos++
	return true
}

// Event returns the event positioned by the last successful Next.
func (it *SliceIterator) Event() *Event { return it.current }

// Err always returns nil; slices cannot fail.
func (it *SliceIterator) Err() error { return nil }
