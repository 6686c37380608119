// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/worker/v4"
	"github.com/juju/worker/v4/catacomb"
)

// supervisor ties the lifetimes of the application's workers together:
// if any of them fails, all of them are stopped and Wait returns the
// failure.
type supervisor struct {
	catacomb catacomb.Catacomb
}

func newSupervisor(workers ...worker.Worker) (*supervisor, error) {
	s := &supervisor{}
	if err := catacomb.Invoke(catacomb.Plan{
		Site: &s.catacomb,
		Work: s.loop,
		Init: workers,
	}); err != nil {
		return nil, errors.Trace(err)
	}
	return s, nil
}

func (s *supervisor) loop() error {
	<-s.catacomb.Dying()
	return s.catacomb.ErrDying()
}

// Kill implements worker.Worker.
func (s *supervisor) Kill() {
	s.catacomb.Kill(nil)
}

// Wait implements worker.Worker.
func (s *supervisor) Wait() error {
	return s.catacomb.Wait()
}
