// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package watchertest

import (
	"time"

	gc "gopkg.in/check.v1"

	"github.com/juju/pomodoro/core/watcher"
	"github.com/juju/pomodoro/internal/testhelpers"
)

// AttributeWatcherC embeds a gocheck.C and adds assertion methods for
// the delivery behaviour of an AttributeWatcher.
type AttributeWatcherC struct {
	*gc.C
	Watcher *watcher.AttributeWatcher
}

// NewAttributeWatcherC returns an AttributeWatcherC that checks for
// delivery on the supplied watcher.
func NewAttributeWatcherC(c *gc.C, w *watcher.AttributeWatcher) AttributeWatcherC {
	return AttributeWatcherC{
		C:       c,
		Watcher: w,
	}
}

// AssertChange fails the test unless the watcher delivers exactly the
// supplied value within LongWait.
func (c AttributeWatcherC) AssertChange(expect any) {
	c.Assert(c.Next(), gc.Equals, expect)
}

// Next claims and returns the next delivered value, failing the test if
// none arrives within LongWait or the changes channel closes. Wakeups
// coalesced into an earlier claim are skipped.
func (c AttributeWatcherC) Next() any {
	deadline := time.After(testhelpers.LongWait)
	for {
		select {
		case _, ok := <-c.Watcher.Changes():
			if !ok {
				c.Fatalf("watcher changes channel closed")
			}
			if value, ok := c.Watcher.Take(); ok {
				return value
			}
		case <-deadline:
			c.Fatalf("watcher did not deliver a change")
		}
	}
}

// AssertNoChange fails the test if the watcher delivers a claimable
// value within ShortWait.
func (c AttributeWatcherC) AssertNoChange() {
	deadline := time.After(testhelpers.ShortWait)
	for {
		select {
		case _, ok := <-c.Watcher.Changes():
			if !ok {
				c.Fatalf("watcher changes channel closed")
			}
			if value, ok := c.Watcher.Take(); ok {
				c.Fatalf("watcher delivered unexpected change: %v", value)
			}
		case <-deadline:
			return
		}
	}
}
