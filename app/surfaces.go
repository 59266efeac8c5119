package app

import (
	"context"
	"sync"

	"prithvipulse/domain/core"
)

// Surfaces tracks the in-flight request of each UI surface so a slow, older
// response cannot overwrite a newer one. Beginning a request on a surface
// cancels the previous one with core.ErrSuperseded as the cause.
type Surfaces struct {
	mu     sync.Mutex
	seq    uint64
	active map[string]*Ticket
}

// Ticket is one request on a surface
type Ticket struct {
	surfaces *Surfaces
	key      string
	seq      uint64
	ctx      context.Context
	cancel   context.CancelCauseFunc
}

func NewSurfaces() *Surfaces {
	return &Surfaces{active: make(map[string]*Ticket)}
}

// Begin issues a ticket for key and supersedes the previous one
func (s *Surfaces) Begin(parent context.Context, key string) *Ticket {
	ctx, cancel := context.WithCancelCause(parent)

	s.mu.Lock()
	s.seq++
	t := &Ticket{surfaces: s, key: key, seq: s.seq, ctx: ctx, cancel: cancel}
	prev := s.active[key]
	s.active[key] = t
	s.mu.Unlock()

	if prev != nil {
		prev.cancel(core.ErrSuperseded)
	}
	return t
}

// Context is cancelled when the ticket is superseded or released
func (t *Ticket) Context() context.Context {
	return t.ctx
}

// Seq is the ticket's position in issue order
func (t *Ticket) Seq() uint64 {
	return t.seq
}

// Commit reports whether the ticket is still the latest for its surface and,
// if so, retires it. A false result means the response must be dropped.
func (t *Ticket) Commit() bool {
	s := t.surfaces
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[t.key] != t {
		return false
	}
	delete(s.active, t.key)
	return true
}

// Release cancels the ticket's context and forgets it if still active. Safe to
// call after Commit.
func (t *Ticket) Release() {
	t.cancel(nil)
	s := t.surfaces
	s.mu.Lock()
	if s.active[t.key] == t {
		delete(s.active, t.key)
	}
	s.mu.Unlock()
}

// InFlight returns the number of surfaces with an active ticket
func (s *Surfaces) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
