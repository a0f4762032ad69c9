package hub

import (
	"context"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/staff"
)

type delivery struct {
	ctx  context.Context
	ev   *event.Event
	done chan error
}

// mailbox is an actor's inbound queue. Its goroutine is the only one that
// calls the actor's HandleEvent.
type mailbox struct {
	actor staff.Actor
	inbox chan delivery
	quit  chan struct{}
}

func newMailbox(a staff.Actor) *mailbox {
	return &mailbox{
		actor: a,
		inbox: make(chan delivery),
		quit:  make(chan struct{}),
	}
}

func (m *mailbox) run() {
	for {
		select {
		case d := <-m.inbox:
			d.done <- m.actor.HandleEvent(d.ctx, d.ev)
		case <-m.quit:
			return
		}
	}
}

// deliver hands ev to the actor and waits until it has been handled.
func (m *mailbox) deliver(ctx context.Context, ev *event.Event) error {
	d := delivery{ctx: ctx, ev: ev, done: make(chan error, 1)}
	select {
	case m.inbox <- d:
	case <-m.quit:
		return ErrClosed
	}
	return <-d.done
}

func (m *mailbox) close() {
	close(m.quit)
}
