package events

import "sync"

// Status is the event hub for one run. The engine emits events into it and
// reporters subscribe to consume them. Delivery is synchronous and in
// emission order; Status also keeps the latest stats snapshot so late
// subscribers can see the current state of the run.
type Status struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(*Event)
	stats  *Stats
}

// NewStatus creates an empty hub with no subscribers and no stats yet.
func NewStatus() *Status {
	return &Status{subs: make(map[int]func(*Event))}
}

// Subscribe registers fn for every subsequent event. The returned function
// removes the registration and is safe to call more than once.
func (s *Status) Subscribe(fn func(*Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Emit delivers evt to all current subscribers. Stats events also update
// the embedded snapshot before delivery.
func (s *Status) Emit(evt *Event) {
	s.mu.Lock()
	if evt.Type == TypeStats && evt.Stats != nil {
		s.stats = evt.Stats
	}
	fns := make([]func(*Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// Stats returns the latest snapshot, or nil if none was emitted yet.
func (s *Status) Stats() *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Plan describes an upcoming run. It is handed to reporters before any
// event is emitted.
type Plan struct {
	// BailWithoutReporting skips the run entirely: reporters must not
	// touch state or produce output for it.
	BailWithoutReporting bool

	FailFastEnabled  bool
	Matching         bool
	PreviousFailures int

	Files          []string
	FilePathPrefix string

	// RunVector counts run invocations within one watch session,
	// starting at 1.
	RunVector int

	Status *Status
}
