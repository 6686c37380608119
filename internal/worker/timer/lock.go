// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package timer

import (
	"context"
	"os/exec"
)

// Locker locks the screen when a work window ends.
type Locker interface {
	Lock(ctx context.Context) error
}

// NewExecLocker returns a Locker shelling out to xdg-screensaver.
func NewExecLocker() Locker {
	return execLocker{}
}

type execLocker struct{}

// Lock is part of the Locker interface. xdg-screensaver exits with
// inane status codes, so failure to run it is the only error reported.
func (execLocker) Lock(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "xdg-screensaver", "lock")
	if err := cmd.Start(); err != nil {
		return err
	}
	_ = cmd.Wait()
	return nil
}

// NewNopLocker returns a Locker that does nothing.
func NewNopLocker() Locker {
	return nopLocker{}
}

type nopLocker struct{}

// Lock is part of the Locker interface.
func (nopLocker) Lock(context.Context) error {
	return nil
}
