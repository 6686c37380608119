// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package notify abstracts desktop notification rendering behind a
// small interface, so that the reminder workflow can be exercised
// without a desktop session.
package notify

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("pomodoro.notify")

// Notification is a displayed notification. Close dismisses it, where
// the backend supports dismissal; it is safe to call more than once.
type Notification interface {
	Close()
}

// Notifier renders desktop notifications.
type Notifier interface {
	// Show displays a notification for at most the supplied duration.
	Show(ctx context.Context, summary, body string, expire time.Duration) (Notification, error)
}

// NewExecNotifier returns a Notifier shelling out to notify-send, the
// portable lowest common denominator of desktop notification tooling.
func NewExecNotifier() Notifier {
	return execNotifier{}
}

type execNotifier struct{}

// Show is part of the Notifier interface.
func (execNotifier) Show(ctx context.Context, summary, body string, expire time.Duration) (Notification, error) {
	cmd := exec.CommandContext(ctx, "notify-send",
		"--app-name", "pomodoro",
		"--expire-time", strconv.Itoa(int(expire/time.Millisecond)),
		summary, body,
	)
	if err := cmd.Run(); err != nil {
		return nil, errors.Annotate(err, "running notify-send")
	}
	return nopNotification{}, nil
}

// NewNopNotifier returns a Notifier that only logs. Useful headless and
// in tests.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

type nopNotifier struct{}

// Show is part of the Notifier interface.
func (nopNotifier) Show(_ context.Context, summary, body string, _ time.Duration) (Notification, error) {
	logger.Infof("%s: %s", summary, body)
	return nopNotification{}, nil
}

type nopNotification struct{}

// Close is part of the Notification interface.
func (nopNotification) Close() {}
