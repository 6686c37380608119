// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package reminder reacts to the remind attribute: while a reminder is
// active it keeps a desktop notification alive, dismissing it the
// moment the reminder is finished or replaced. It is an exclusive
// driver, so a newer reminder always displaces an older one.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/juju/worker/v4"

	"github.com/juju/pomodoro/core/observable"
	"github.com/juju/pomodoro/core/watcher"
	"github.com/juju/pomodoro/internal/notify"
	"github.com/juju/pomodoro/internal/pomodoro"
)

// Config holds the direct dependencies of the reminder worker.
type Config struct {
	State    *pomodoro.State
	Notifier notify.Notifier
	Player   notify.Player
	Logger   watcher.Logger
}

// Validate returns an error if the config cannot start a reminder
// worker.
func (config Config) Validate() error {
	if config.State == nil {
		return errors.NotValidf("nil State")
	}
	if config.Notifier == nil {
		return errors.NotValidf("nil Notifier")
	}
	if config.Player == nil {
		return errors.NotValidf("nil Player")
	}
	if config.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// NewWorker starts a worker showing a reminder whenever one is
// activated on the state entity.
func NewWorker(config Config) (worker.Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	h := &handler{config: config}
	w, err := watcher.NewExclusiveWorker(watcher.ExclusiveConfig{
		Entity:  config.State.Entity,
		Name:    pomodoro.AttrRemind,
		Handler: h.show,
		Logger:  config.Logger,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return w, nil
}

type handler struct {
	config Config
}

// show displays the reminder and holds it until the reminder is
// finished (its channel closes) or this invocation is superseded or
// torn down. Reminder deletion delivers the sentinel, which simply ends
// the previous invocation via supersession.
func (h *handler) show(ctx context.Context, value any) error {
	if observable.IsDeleted(value) {
		return nil
	}
	over, ok := value.(chan struct{})
	if !ok {
		return errors.Errorf("reminder value %v is not a signal channel", value)
	}

	st := h.config.State
	lead := st.NotifyLead()
	var body string
	if st.Rest() {
		body = fmt.Sprintf("Break ends in %d seconds", lead)
	} else {
		body = fmt.Sprintf("Next break in %d seconds", lead)
	}

	if file := st.Settings().AudioFile(); file != "" {
		if err := h.config.Player.Play(ctx, file); err != nil {
			h.config.Logger.Warningf("playing %q: %v", file, err)
		}
	}

	expire := time.Duration(lead) * time.Second
	notification, err := h.config.Notifier.Show(ctx, "Break time", body, expire)
	if err != nil {
		// A missing notification backend should not bring the timer
		// down; the reminder still runs its course.
		h.config.Logger.Warningf("showing reminder: %v", err)
	} else {
		defer notification.Close()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-over:
	}
	return nil
}
