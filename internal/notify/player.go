// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package notify

import (
	"context"
	"os/exec"

	"github.com/juju/errors"
)

// Player plays a short audio cue.
type Player interface {
	// Play starts playing the file at path, returning without waiting
	// for playback to finish.
	Play(ctx context.Context, path string) error
}

// NewExecPlayer returns a Player shelling out to paplay.
func NewExecPlayer() Player {
	return execPlayer{}
}

type execPlayer struct{}

// Play is part of the Player interface.
func (execPlayer) Play(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "paplay", path)
	if err := cmd.Start(); err != nil {
		return errors.Annotatef(err, "playing %q", path)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// NewNopPlayer returns a Player that does nothing.
func NewNopPlayer() Player {
	return nopPlayer{}
}

type nopPlayer struct{}

// Play is part of the Player interface.
func (nopPlayer) Play(context.Context, string) error {
	return nil
}
