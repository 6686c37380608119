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

// SequentialConfig holds the direct dependencies of a SequentialWorker.
type SequentialConfig struct {
	Entity  *observable.Entity
	Name    string
	Handler Handler
	Logger  Logger
}

// Validate returns an error if the config cannot start a SequentialWorker.
func (config SequentialConfig) Validate() error {
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

// SequentialWorker invokes a handler for each delivered value of one
// observed attribute, awaiting the handler's completion before fetching
// the next value. Handler invocations never overlap; values arriving
// while the handler runs are coalesced to the latest. A handler error
// kills only this worker.
type SequentialWorker struct {
	catacomb catacomb.Catacomb
	config   SequentialConfig
	watcher  *AttributeWatcher
}

// NewSequentialWorker starts a worker dispatching changes of the named
// attribute to the configured handler, one at a time. The subscription
// is registered before the call returns.
func NewSequentialWorker(config SequentialConfig) (*SequentialWorker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &SequentialWorker{
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
func (w *SequentialWorker) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *SequentialWorker) Wait() error {
	return w.catacomb.Wait()
}

func (w *SequentialWorker) loop() error {
	for {
		select {
		case <-w.catacomb.Dying():
			return w.catacomb.ErrDying()
		case _, ok := <-w.watcher.Changes():
			if !ok {
				return errors.New("attribute change channel closed")
			}
			value, ok := w.watcher.Take()
			if !ok {
				// Wakeup coalesced into an earlier claim.
				continue
			}
			if err := w.dispatch(value); err != nil {
				return errors.Trace(err)
			}
		}
	}
}

func (w *SequentialWorker) dispatch(value any) error {
	ctx, cancel := w.scopedContext()
	defer cancel()

	w.config.Logger.Debugf("dispatching %q change", w.config.Name)
	err := w.config.Handler(ctx, value)

	// A handler aborted by worker teardown has not failed.
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return errors.Trace(err)
}

func (w *SequentialWorker) scopedContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(w.catacomb.Context(context.Background()))
}
