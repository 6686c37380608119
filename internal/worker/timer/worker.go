// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package timer drives the pomodoro cycle: it counts seconds into the
// current window, honours suspension, raises the reminder as the window
// draws to a close, locks the screen when a work window ends, and flips
// between work and rest.
//
// The cycle is expressed entirely as reactions to the shared state
// entity: the window counter is an exclusive driver on the delay
// attribute, so re-dispatching that attribute restarts the window from
// zero, and everything else is a small driver nudging delay when its
// input changes.
package timer

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"

	"github.com/juju/pomodoro/core/watcher"
	"github.com/juju/pomodoro/internal/pomodoro"
)

// Config holds the direct dependencies of the timer worker.
type Config struct {
	State  *pomodoro.State
	Clock  clock.Clock
	Locker Locker
	Logger watcher.Logger
}

// Validate returns an error if the config cannot start a timer worker.
func (config Config) Validate() error {
	if config.State == nil {
		return errors.NotValidf("nil State")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if config.Locker == nil {
		return errors.NotValidf("nil Locker")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// Worker owns the drivers implementing the pomodoro cycle. Killing it
// tears all of them down, cancelling any window in progress.
type Worker struct {
	catacomb catacomb.Catacomb
	config   Config
}

// NewWorker starts the timer worker. All subscriptions are registered
// before the call returns; dispatch the delay attribute (for example
// with State.NotifyDelay) to start the first window.
func NewWorker(config Config) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	w := &Worker{
		config: config,
	}

	st := config.State
	var children []worker.Worker
	add := func(child worker.Worker, err error) error {
		if err != nil {
			for _, c := range children {
				_ = worker.Stop(c)
			}
			return errors.Trace(err)
		}
		children = append(children, child)
		return nil
	}

	if err := add(watcher.NewExclusiveWorker(watcher.ExclusiveConfig{
		Entity:  st.Entity,
		Name:    pomodoro.AttrDelay,
		Handler: w.runWindow,
		Logger:  config.Logger,
	})); err != nil {
		return nil, err
	}
	if err := add(watcher.NewExclusiveWorker(watcher.ExclusiveConfig{
		Entity:  st.Entity,
		Name:    pomodoro.AttrNotify,
		Handler: w.watchLead,
		Logger:  config.Logger,
	})); err != nil {
		return nil, err
	}
	if err := add(watcher.NewSequentialWorker(watcher.SequentialConfig{
		Entity:  st.Entity,
		Name:    pomodoro.AttrRest,
		Handler: w.modeChanged,
		Logger:  config.Logger,
	})); err != nil {
		return nil, err
	}
	if err := add(watcher.NewSequentialWorker(watcher.SequentialConfig{
		Entity:  st.Entity,
		Name:    pomodoro.AttrInterval,
		Handler: w.intervalChanged,
		Logger:  config.Logger,
	})); err != nil {
		return nil, err
	}
	if err := add(watcher.NewSequentialWorker(watcher.SequentialConfig{
		Entity:  st.Entity,
		Name:    pomodoro.AttrBreak,
		Handler: w.breakChanged,
		Logger:  config.Logger,
	})); err != nil {
		return nil, err
	}

	err := catacomb.Invoke(catacomb.Plan{
		Site: &w.catacomb,
		Work: w.loop,
		Init: children,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

// Kill is part of the worker.Worker interface.
func (w *Worker) Kill() {
	w.catacomb.Kill(nil)
}

// Wait is part of the worker.Worker interface.
func (w *Worker) Wait() error {
	return w.catacomb.Wait()
}

func (w *Worker) loop() error {
	<-w.catacomb.Dying()
	return w.catacomb.ErrDying()
}

// runWindow counts seconds into the current window. It runs under the
// exclusive driver on the delay attribute, so any re-dispatch of delay
// cancels it and starts a fresh window.
func (w *Worker) runWindow(ctx context.Context, value any) error {
	minutes, ok := value.(int)
	if !ok {
		return errors.Errorf("window length %v is not a number of minutes", value)
	}
	total := minutes * 60
	st := w.config.State
	// A restarted window starts clean: any reminder still showing is
	// for the window this one replaces.
	st.FinishRemind()
	st.SetElapsed(0)

	elapsed := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.config.Clock.After(time.Second):
		}
		if st.Suspend() {
			// Paused seconds do not count.
			continue
		}
		elapsed++
		st.SetElapsed(elapsed)
		if elapsed < total {
			continue
		}

		// Window over: dismiss any reminder, lock the screen when a
		// work window ends, and flip the mode. The mode change nudges
		// delay, which restarts this handler with the new window.
		elapsed = 0
		st.SetElapsed(0)
		st.FinishRemind()
		if !st.Rest() && st.Settings().LockScreen() {
			if err := w.config.Locker.Lock(ctx); err != nil {
				w.config.Logger.Warningf("locking screen: %v", err)
			}
		}
		st.SetRest(!st.Rest())
	}
}

// watchLead activates the reminder once the remaining time in the
// current window drops to the configured lead. It runs under the
// exclusive driver on the notify attribute, restarting whenever the
// lead changes.
func (w *Worker) watchLead(ctx context.Context, value any) error {
	lead, ok := value.(int)
	if !ok {
		return errors.Errorf("reminder lead %v is not a number of seconds", value)
	}
	if lead <= 0 {
		return nil
	}
	st := w.config.State
	aw := watcher.NewAttributeWatcher(st.Entity, pomodoro.AttrElapsed)
	defer func() { _ = worker.Stop(aw) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-aw.Changes():
			if !ok {
				return errors.New("elapsed change channel closed")
			}
			v, ok := aw.Take()
			if !ok {
				continue
			}
			elapsed, ok := v.(int)
			if !ok {
				continue
			}
			remaining := st.Delay()*60 - elapsed
			if remaining > 0 && remaining <= lead {
				st.EnsureRemind()
			}
		}
	}
}

func (w *Worker) modeChanged(ctx context.Context, value any) error {
	// Changing mode changes the window length; restart the window.
	w.config.State.NotifyDelay()
	return nil
}

func (w *Worker) intervalChanged(ctx context.Context, value any) error {
	if !w.config.State.Rest() {
		w.config.State.NotifyDelay()
	}
	return nil
}

func (w *Worker) breakChanged(ctx context.Context, value any) error {
	if w.config.State.Rest() {
		w.config.State.NotifyDelay()
	}
	return nil
}
