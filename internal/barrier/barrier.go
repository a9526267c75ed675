// Package barrier provides a reusable cyclic barrier with a completion action.
package barrier

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrBroken is returned to every party waiting on, or arriving at, a broken barrier when no
// specific cause was given.
var ErrBroken = errors.New("barrier broken")

// Barrier blocks parties until all of them have called Wait. The last party to arrive runs the
// action while the others are still blocked, then everyone is released and the barrier resets
// for the next generation.
type Barrier struct {
	parties int
	action  func() error

	mu         sync.Mutex
	cond       *sync.Cond
	waiting    int
	generation uint64
	broken     error
}

// New creates a barrier for n parties. action may be nil.
func New(n int, action func() error) *Barrier {
	if n < 1 {
		panic("barrier needs at least one party")
	}
	b := &Barrier{parties: n, action: action}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until every party has arrived. If the action returns an error the barrier breaks
// and every party receives that error. Once broken, Wait returns immediately.
func (b *Barrier) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.broken != nil {
		return b.broken
	}

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		if b.action != nil {
			if err := b.action(); err != nil {
				b.breakLocked(err)
				return err
			}
		}
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return nil
	}

	for gen == b.generation && b.broken == nil {
		b.cond.Wait()
	}
	if gen == b.generation {
		return b.broken
	}
	return nil
}

// Break breaks the barrier, releasing every waiting party with err. A nil err is replaced by
// ErrBroken. Breaking an already broken barrier keeps the first cause.
func (b *Barrier) Break(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		err = ErrBroken
	}
	b.breakLocked(err)
}

func (b *Barrier) breakLocked(err error) {
	if b.broken == nil {
		b.broken = err
	}
	b.cond.Broadcast()
}

// Err returns the error the barrier was broken with, if any.
func (b *Barrier) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broken
}

// Generation is the number of times the barrier has tripped.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
