package command

import (
	"context"
	"sync"
	"time"
)

// Result is the success value of a settled command. Devices acknowledge
// commands without a payload, so the result carries bookkeeping only.
type Result struct {
	// Label is the correlation id the reply carried.
	Label string

	// ReceivedAt is when the reply was matched.
	ReceivedAt time.Time
}

// Pending is the handle for one outstanding command. It settles exactly
// once: with a result, a device error, a transport error, a timeout, or
// a connection-lost error.
//
// Callers wait on the handle, never on engine internals. Abandoning a
// handle has no side effects; the underlying entry lives until it is
// resolved or times out.
type Pending struct {
	id        string
	createdAt time.Time
	done      chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	settled bool
	result  *Result
	err     error
}

func newPending(id string) *Pending {
	return &Pending{
		id:        id,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// ID returns the correlation id.
func (p *Pending) ID() string {
	return p.id
}

// Done returns a channel closed when the command settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the command settles or ctx is done. Cancelling ctx
// abandons the handle without affecting the outstanding command.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.Outcome()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Outcome returns the settled result or error. Valid only after Done()
// is closed; before that it reports both as nil.
func (p *Pending) Outcome() (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.err
}

// settle transitions to a terminal state, stops any timeout timer, and
// wakes waiters. Returns false if already settled.
func (p *Pending) settle(result *Result, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.settled {
		return false
	}
	p.settled = true
	p.result = result
	p.err = err
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	close(p.done)
	return true
}

// setTimer attaches the engine-owned timeout timer so settling can stop
// it. No-op if the command already settled (a same-tick reply).
func (p *Pending) setTimer(timer *time.Timer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.settled {
		timer.Stop()
		return
	}
	p.timer = timer
}
