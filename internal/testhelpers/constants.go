// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package testhelpers holds shared timeouts for asynchronous test
// assertions.
package testhelpers

import (
	"time"
)

// ShortWait is how long to wait for something that should not happen:
// long enough to catch it when it does, short enough not to drag the
// suite down when it correctly does not.
const ShortWait = 50 * time.Millisecond

// LongWait is how long to wait for something that should already have
// happened. Generous so that a loaded test machine does not produce
// spurious failures; a passing test never waits this long.
const LongWait = 10 * time.Second
