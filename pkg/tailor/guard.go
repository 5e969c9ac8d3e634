package tailor

import (
	"sync"
)

// Guard tracks the latest request per session so a superseded request's result can be dropped.
type Guard struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]uint64
}

// Ticket identifies one request within a session.
type Ticket struct {
	guard   *Guard
	session string
	seq     uint64
}

// NewGuard creates an empty guard.
func NewGuard() (g *Guard) {
	g = &Guard{latest: make(map[string]uint64)}
	return g
}

// Begin registers a new request for session and supersedes any earlier one.
func (g *Guard) Begin(session string) (t *Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	g.latest[session] = g.next
	t = &Ticket{guard: g, session: session, seq: g.next}
	return t
}

// Current reports whether no newer request has begun for the ticket's session.
func (t *Ticket) Current() (ok bool) {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()

	ok = t.guard.latest[t.session] == t.seq
	return ok
}

// Done releases the session if this ticket is still the latest one.
func (t *Ticket) Done() {
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()

	if t.guard.latest[t.session] == t.seq {
		delete(t.guard.latest, t.session)
	}
}
