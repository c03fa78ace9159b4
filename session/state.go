package session

import (
	"context"
	"sync"

	"github.com/finsnap/finsnap-go/core"
)

// stateBox guards the live auth state and coalesces concurrent validation
// calls into one shared round trip.
type stateBox struct {
	mu    sync.Mutex
	state core.AuthState
	user  *core.User

	inflight *validateCall
}

type validateCall struct {
	done    chan struct{}
	session core.Session
	err     error
}

func newStateBox() *stateBox {
	return &stateBox{state: core.AuthStateBoot}
}

// validate runs fn at most once per in-flight window. Late arrivals wait on
// the leader's result instead of issuing their own request. The returned
// bool reports whether the caller joined an existing call.
func (b *stateBox) validate(
	ctx context.Context,
	fn func(ctx context.Context) (core.Session, error),
) (core.Session, bool, error) {
	b.mu.Lock()
	if call := b.inflight; call != nil {
		b.mu.Unlock()
		select {
		case <-call.done:
			return call.session, true, call.err
		case <-ctx.Done():
			return core.Session{State: core.AuthStateValidating, IsLoading: true}, true, ctx.Err()
		}
	}

	call := &validateCall{done: make(chan struct{})}
	b.inflight = call
	b.transitionLocked(core.AuthStateValidating)
	b.mu.Unlock()

	call.session, call.err = fn(ctx)
	close(call.done)

	b.mu.Lock()
	b.inflight = nil
	b.mu.Unlock()

	return call.session, false, call.err
}

// settle moves the state machine to next, records the user for
// authenticated states, and returns the resulting snapshot.
func (b *stateBox) settle(next core.AuthState, user *core.User, pair core.TokenPair) core.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked(next)
	if b.state == core.AuthStateAuthenticated {
		b.user = user
	} else {
		b.user = nil
	}
	return b.snapshotLocked(pair)
}

func (b *stateBox) snapshot(pair core.TokenPair) core.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(pair)
}

func (b *stateBox) snapshotLocked(pair core.TokenPair) core.Session {
	var user *core.User
	if b.user != nil {
		copied := *b.user
		user = &copied
	}
	return core.Session{
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		User:            user,
		State:           b.state,
		IsAuthenticated: b.state == core.AuthStateAuthenticated,
		IsLoading:       b.state == core.AuthStateBoot || b.state == core.AuthStateValidating,
	}
}

// transitionLocked applies next when the state machine allows it. Settling
// from a terminal state routes through validating first so the allowed
// transition table stays authoritative.
func (b *stateBox) transitionLocked(next core.AuthState) {
	if core.AuthTransitionAllowed(b.state, next) {
		b.state = next
		return
	}
	if core.AuthTransitionAllowed(b.state, core.AuthStateValidating) &&
		core.AuthTransitionAllowed(core.AuthStateValidating, next) {
		b.state = next
	}
}
