// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package observable

import (
	"fmt"
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("pomodoro.observable")

// ErrAttributeMissing is returned by Notify when asked to re-dispatch an
// attribute that has never been set on the entity.
const ErrAttributeMissing = errors.ConstError("attribute missing")

// Deleted is dispatched to subscribers when an attribute is removed.
// It compares unequal to every value storable via Set.
var Deleted = deleted{}

type deleted struct{}

// String is part of fmt.Stringer.
func (deleted) String() string {
	return "<deleted>"
}

// IsDeleted reports whether a dispatched value signals attribute removal.
func IsDeleted(value any) bool {
	_, ok := value.(deleted)
	return ok
}

// Subscription identifies one registered subscriber callback for one
// attribute name. It is returned by Subscribe and consumed by Unsubscribe.
type Subscription struct {
	name string
	fn   func(any)
}

// Entity holds named attribute values and, per name, the set of
// subscribers to dispatch to when that attribute changes.
//
// All methods are safe for concurrent use. Mutation and fan-out happen
// under a single critical section, so a subscriber never observes a
// half-applied change, and no dispatch for a given name interleaves
// with another mutation of that name.
type Entity struct {
	mu     sync.Mutex
	values map[string]any
	subs   map[string]map[*Subscription]struct{}
}

// NewEntity returns an empty observable entity.
func NewEntity() *Entity {
	return &Entity{
		values: make(map[string]any),
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Set stores value under name and dispatches it to every subscriber
// currently registered for name. Dispatch order across subscribers is
// unspecified.
func (e *Entity) Set(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.values[name] = value
	e.dispatch(name, value)
}

// Get returns the current value of name and whether it is set.
func (e *Entity) Get(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	value, ok := e.values[name]
	return value, ok
}

// Delete removes name from the entity and dispatches the Deleted
// sentinel to its subscribers. Deleting an absent attribute is a no-op.
func (e *Entity) Delete(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.values[name]; !ok {
		return
	}
	delete(e.values, name)
	e.dispatch(name, Deleted)
}

// Notify re-dispatches the current value of each named attribute to its
// subscribers without mutating anything, returning the total number of
// subscriber invocations performed. It fails, performing no invocations,
// if any named attribute has never been set.
func (e *Entity) Notify(names ...string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, name := range names {
		if _, ok := e.values[name]; !ok {
			return 0, fmt.Errorf("attribute %q never set: %w", name, ErrAttributeMissing)
		}
	}
	count := 0
	for _, name := range names {
		count += e.dispatch(name, e.values[name])
	}
	return count, nil
}

// Subscribe registers fn to be invoked with every subsequent value
// dispatched for name. The current value, if any, is not delivered;
// use Notify to replay it.
func (e *Entity) Subscribe(name string, fn func(any)) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub := &Subscription{name: name, fn: fn}
	set, ok := e.subs[name]
	if !ok {
		set = make(map[*Subscription]struct{})
		e.subs[name] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes a previously registered subscription. Removing an
// already-removed subscription is a no-op.
func (e *Entity) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	set, ok := e.subs[sub.name]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(e.subs, sub.name)
	}
}

// SubscriberCount returns the number of subscriptions currently
// registered for name.
func (e *Entity) SubscriberCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.subs[name])
}

// dispatch invokes every subscriber of name with value, isolating the
// rest of the fan-out from any subscriber that panics. It returns the
// number of invocations made. Callers must hold e.mu.
func (e *Entity) dispatch(name string, value any) int {
	count := 0
	for sub := range e.subs[name] {
		e.invoke(sub, value)
		count++
	}
	return count
}

func (e *Entity) invoke(sub *Subscription, value any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("subscriber for %q panicked: %v", sub.name, r)
		}
	}()
	sub.fn(value)
}
