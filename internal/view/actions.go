package view

import "sync"

// ActionState tags one row's in-flight mutation.
type ActionState int

const (
	ActionIdle ActionState = iota
	ActionInProgress
	ActionFailed
)

func (s ActionState) String() string {
	switch s {
	case ActionInProgress:
		return "in-progress"
	case ActionFailed:
		return "failed"
	}
	return "idle"
}

// ActionTracker maps entity id -> action state so each row's approve/reject/
// validate button is disabled independently. One failed row never blocks an
// unrelated row.
type ActionTracker struct {
	mu     sync.Mutex
	states map[int64]ActionState
}

// NewActionTracker returns an empty tracker.
func NewActionTracker() *ActionTracker {
	return &ActionTracker{states: make(map[int64]ActionState)}
}

// Begin marks id in-progress. It returns false, refusing the action, when a
// mutation for that same id is already in flight.
func (t *ActionTracker) Begin(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[id] == ActionInProgress {
		return false
	}
	t.states[id] = ActionInProgress
	return true
}

// Finish records the action outcome: idle on success (the row is re-enabled),
// failed otherwise (the row is re-enabled and may be retried).
func (t *ActionTracker) Finish(id int64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.states[id] = ActionFailed
		return
	}
	delete(t.states, id)
}

// State returns the current tag for id.
func (t *ActionTracker) State(id int64) ActionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[id]
}

// FetchGate hands out monotonically increasing generation tokens so a view
// only accepts the freshest fetch. A slow response started before a newer
// fetch is discarded instead of overwriting fresher data.
type FetchGate struct {
	mu      sync.Mutex
	current uint64
}

// Next starts a new fetch and returns its generation token.
func (g *FetchGate) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

// Accept reports whether a fetch carrying token may still publish its result.
func (g *FetchGate) Accept(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return token == g.current
}
