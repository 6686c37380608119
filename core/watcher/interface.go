// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package watcher

import (
	"context"

	"github.com/juju/worker/v4"
)

// Watcher defines a generic watcher; the changes channel yields a value
// whenever the watched source changes.
type Watcher[T any] interface {
	worker.Worker

	// Changes returns the channel on which changes are delivered.
	// The channel is closed when the watcher dies.
	Changes() <-chan T
}

// NotifyWatcher sends a value whenever the observed source changes,
// without saying what changed. Consumers re-read state on wakeup.
type NotifyWatcher = Watcher[struct{}]

// Handler reacts to a single delivered attribute value. Blocking
// handlers must honour the supplied context, which is cancelled when the
// owning driver is killed and, for exclusive drivers, when a newer value
// supersedes the invocation.
type Handler func(context.Context, any) error

// Logger facilitates emitting log messages.
type Logger interface {
	Debugf(string, ...interface{})
	Warningf(string, ...interface{})
}
