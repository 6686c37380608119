// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package watcher

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"

	"github.com/juju/pomodoro/core/observable"
)

// ExclusiveConfig holds the direct dependencies of an ExclusiveWorker.
type ExclusiveConfig struct {
	Entity  *observable.Entity
	Name    string
	Handler Handler
	Logger  Logger
}

// Validate returns an error if the config cannot start an ExclusiveWorker.
func (config ExclusiveConfig) Validate() error {
	if config.Entity == nil {
		return errors.NotValidf("nil Entity")
	}
	if config.Name == "" {
		return errors.NotValidf("empty Name")
	}
	if config.Handler == nil {
		return errors.NotValidf("nil Handler")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// ExclusiveWorker starts a handler invocation for each delivered value
// of one observed attribute, cancelling any still-running prior
// invocation before the new one starts. At most one invocation is alive
// at any instant; teardown cancels and reaps an in-flight invocation.
// A handler error other than cancellation kills only this worker.
type ExclusiveWorker struct {
	catacomb catacomb.Catacomb
	config   ExclusiveConfig
	watcher  *AttributeWatcher
}

// invocation is one running handler call. err is set before done is
// closed.
type invocation struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewExclusiveWorker starts a worker dispatching changes of the named
// attribute to the configured handler with cancel-and-restart semantics.
// The subscription is registered before the call returns.
func NewExclusiveWorker(config ExclusiveConfig) (*ExclusiveWorker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &ExclusiveWorker{
		config:  config,
		watcher: NewAttributeWatcher(config.Entity, config.Name),
	}
	err := catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
		Init: []worker.Worker{w.watcher},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

// Kill is part of the worker.Worker interface.
func (w *ExclusiveWorker) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *ExclusiveWorker) Wait() error {
	return w.catacomb.Wait()
}

func (w *ExclusiveWorker) loop() error {
	var inflight *invocation
	defer func() {
		if inflight != nil {
			inflight.cancel()
			<-inflight.done
		}
	}()

	for {
		// Only watch for completion while an invocation is running.
		var done chan struct{}
		if inflight != nil {
			done = inflight.done
		}
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case <-done:
			err := inflight.err
			inflight = nil
			if err != nil {
				return errors.Trace(err)
			}
		case _, ok := <-w.watcher.Changes():
			if !ok {
				return errors.New("attribute change channel closed")
			}
			value, ok := w.watcher.Take()
			if !ok {
				// Wakeup coalesced into an earlier claim.
				continue
			}
			if err := w.supersede(inflight); err != nil {
				return errors.Trace(err)
			}
			inflight = w.start(value)
		}
	}
}

// supersede cancels the in-flight invocation, if any, and reaps it. An
// invocation that failed before the cancellation landed still kills the
// worker.
func (w *ExclusiveWorker) supersede(inflight *invocation) error {
	if inflight == nil {
		return nil
	}
	w.config.Logger.Debugf("cancelling superseded %q handler", w.config.Name)
	inflight.cancel()
	<-inflight.done
	return errors.Trace(inflight.err)
}

// start runs the handler in its own goroutine with a context cancelled
// on supersession or worker teardown.
func (w *ExclusiveWorker) start(value any) *invocation {
	ctx, cancel := context.WithCancel(w.catacomb.Context(context.Background()))
	inv := &invocation{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(inv.done)
		defer cancel()
		err := w.config.Handler(ctx, value)
		if err != nil && !errors.Is(err, context.Canceled) {
			inv.err = err
		}
	}()
	return inv
}
