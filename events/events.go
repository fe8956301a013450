// SPDX-License-Identifier: MIT

// Package events delivers registry progress to external subscribers.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an Event.
type Kind int

const (
	// KindPrepared follows a successful Prepare.
	KindPrepared Kind = iota
	// KindSolveStarted precedes the numerical work of a solve.
	KindSolveStarted
	// KindCheckpoint carries one convergence checkpoint.
	KindCheckpoint
	// KindSolved follows a solve that converged.
	KindSolved
	// KindNotConverged follows a solve that stopped at its iteration cap or diverged.
	KindNotConverged
	// KindFailed follows a solve that returned an error.
	KindFailed
	// KindReleased follows the release of resolved inputs.
	KindReleased
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindPrepared:
		return "prepared"
	case KindSolveStarted:
		return "solve_started"
	case KindCheckpoint:
		return "checkpoint"
	case KindSolved:
		return "solved"
	case KindNotConverged:
		return "not_converged"
	case KindFailed:
		return "failed"
	case KindReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Event is emitted for one sub-problem.
type Event struct {
	ID     uuid.UUID
	RunID  uuid.UUID
	Kind   Kind
	Time   time.Time
	Source string
	Target string

	// Iteration and Residual are set for checkpoints and final records.
	Iteration int
	Residual  float64
	// Err is set for KindFailed.
	Err error
}

// Bus fans events out to subscribers. Subscribers run synchronously on the
// publishing goroutine and must not block. The zero Bus is ready to use.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

// NewBus returns an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers fn and returns a function that removes it. Panics on nil.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		panic("events: Subscribe(nil)")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish stamps e with an ID and time (when unset) and delivers it to every
// subscriber. A nil Bus drops the event.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	subs := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}
