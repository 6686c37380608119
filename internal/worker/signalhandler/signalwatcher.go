// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package signalhandler translates process signals into operations on
// the shared state entity.
package signalhandler

import (
	"fmt"
	"os"
	"syscall"

	"github.com/juju/errors"
	"github.com/juju/worker/v4/catacomb"

	"github.com/juju/pomodoro/core/watcher"
	"github.com/juju/pomodoro/internal/pomodoro"
)

// ErrShutdown is the error a signal handler returns to request a
// graceful shutdown of the process.
const ErrShutdown = errors.ConstError("shutdown requested")

// SignalHandlerFunc reacts to a received signal. Returning a non-nil
// error stops the watcher with that error.
type SignalHandlerFunc func(os.Signal) error

// SignalWatcher is the worker responsible for watching signals and
// feeding them to a handler until the handler asks to stop.
type SignalWatcher struct {
	catacomb catacomb.Catacomb
	handler  SignalHandlerFunc
	logger   watcher.Logger
	sigCh    <-chan os.Signal
}

// NewSignalWatcher constructs a new signal watcher worker with the
// specified signal channel and handler func.
func NewSignalWatcher(
	logger watcher.Logger,
	sig <-chan os.Signal,
	handler SignalHandlerFunc,
) (*SignalWatcher, error) {
	s := &SignalWatcher{
		handler: handler,
		logger:  logger,
		sigCh:   sig,
	}

	if err := catacomb.Invoke(catacomb.Plan{
		Site: &s.catacomb,
		Work: s.watch,
	}); err != nil {
		return s, fmt.Errorf("creating catacomb plan: %w", err)
	}

	return s, nil
}

// StateHandler returns a SignalHandlerFunc operating on the supplied
// state: SIGUSR1 toggles suspension, SIGUSR2 restarts the current
// window, and anything else requests shutdown.
func StateHandler(st *pomodoro.State) SignalHandlerFunc {
	return func(sig os.Signal) error {
		switch sig {
		case syscall.SIGUSR1:
			st.ToggleSuspend()
		case syscall.SIGUSR2:
			st.NotifyDelay()
		default:
			return ErrShutdown
		}
		return nil
	}
}

// Kill implements worker.Kill
func (s *SignalWatcher) Kill() {
	s.catacomb.Kill(nil)
}

// Wait implements worker.Wait
func (s *SignalWatcher) Wait() error {
	return s.catacomb.Wait()
}

// watch watches for signals on the provided channel, handling each in
// turn, and returns the error returned by the handler, if any.
func (s *SignalWatcher) watch() error {
	for {
		select {
		case sig, ok := <-s.sigCh:
			if !ok {
				return errors.New("signal channel closed unexpectedly")
			}
			s.logger.Debugf("handling signal %v", sig)
			if err := s.handler(sig); err != nil {
				return err
			}
		case <-s.catacomb.Dying():
			return s.catacomb.ErrDying()
		}
	}
}
