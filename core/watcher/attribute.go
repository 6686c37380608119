// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package watcher

import (
	"sync"

	"gopkg.in/tomb.v2"

	"github.com/juju/pomodoro/core/observable"
)

// AttributeWatcher bridges an entity's synchronous dispatch for one
// attribute into an asynchronous stream. It is a single-slot mailbox:
// each dispatch overwrites the undelivered slot and arms a coalesced
// wakeup, so a slow consumer always claims the latest value rather than
// every intermediate one. The consumer waits on Changes and claims the
// pending value with Take; Take at wake time, never earlier, so a value
// stored before the claim can never be shadowed by a staler one.
//
// Each AttributeWatcher is an independent subscription; multiple
// watchers of the same attribute do not interfere. The subscription is
// removed from the entity on every exit path of the watcher, after
// which the changes channel is closed.
type AttributeWatcher struct {
	tomb   tomb.Tomb
	entity *observable.Entity
	name   string

	// mu guards the single pending slot. onChange runs on the mutating
	// goroutine, under the entity's lock; it must never block.
	mu     sync.Mutex
	latest any
	dirty  bool

	sub     *observable.Subscription
	changed chan struct{}
}

// NewAttributeWatcher returns a watcher reporting each change of the
// named attribute on entity, beginning with the first change after the
// call returns. Use Entity.Notify to replay the current value through
// it.
func NewAttributeWatcher(entity *observable.Entity, name string) *AttributeWatcher {
	w := &AttributeWatcher{
		entity:  entity,
		name:    name,
		changed: make(chan struct{}, 1),
	}
	// Register synchronously so that no change set after construction
	// can be missed.
	w.sub = entity.Subscribe(name, w.onChange)
	w.tomb.Go(w.loop)
	return w
}

// Changes returns the channel on which wakeups are delivered. A wakeup
// means the slot held an unclaimed value at some point since the last
// Take; claim it with Take. The channel is closed when the watcher
// dies.
func (w *AttributeWatcher) Changes() <-chan struct{} {
	return w.changed
}

// Take claims the pending value, clearing the slot. It reports false
// if every dispatched value has already been claimed, which a consumer
// can see after a wakeup that was coalesced into an earlier claim.
func (w *AttributeWatcher) Take() (any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirty {
		return nil, false
	}
	value := w.latest
	w.latest = nil
	w.dirty = false
	return value, true
}

// Kill is part of the worker.Worker interface.
func (w *AttributeWatcher) Kill() {
	w.tomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *AttributeWatcher) Wait() error {
	return w.tomb.Wait()
}

// onChange is the subscriber callback registered with the entity.
func (w *AttributeWatcher) onChange(value any) {
	w.mu.Lock()
	w.latest = value
	w.dirty = true
	w.mu.Unlock()

	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func (w *AttributeWatcher) loop() error {
	// Deferred in this order so that the subscription is gone, and any
	// in-flight fan-out with it, before the channel closes under the
	// consumer. Unsubscribing takes the entity's lock, which a fan-out
	// holds for its duration.
	defer close(w.changed)
	defer w.entity.Unsubscribe(w.sub)

	<-w.tomb.Dying()
	return tomb.ErrDying
}
