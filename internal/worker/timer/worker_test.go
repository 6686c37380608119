// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package timer_test

import (
	"context"
	"os"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/loggo/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/juju/worker/v4/workertest"
	gc "gopkg.in/check.v1"

	"github.com/juju/pomodoro/core/observable"
	"github.com/juju/pomodoro/internal/pomodoro"
	"github.com/juju/pomodoro/internal/testhelpers"
	"github.com/juju/pomodoro/internal/worker/timer"
)

type workerSuite struct {
	testing.IsolationSuite

	state  *pomodoro.State
	clock  *testclock.Clock
	locker *lockSpy
}

var _ = gc.Suite(&workerSuite{})

func (s *workerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	for _, key := range pomodoro.SettingKeys.SortedValues() {
		s.PatchEnvironment(key, "")
		os.Unsetenv(key)
	}
	s.state = pomodoro.NewState(pomodoro.NewSettings("pomodoro"))
	s.state.SetInterval(1)
	s.state.SetBreak(1)
	s.clock = testclock.NewClock(time.Time{})
	s.locker = &lockSpy{locked: make(chan struct{}, 16)}
}

func (s *workerSuite) config() timer.Config {
	return timer.Config{
		State:  s.state,
		Clock:  s.clock,
		Locker: s.locker,
		Logger: loggo.GetLogger("test"),
	}
}

func (s *workerSuite) newWorker(c *gc.C) *timer.Worker {
	w, err := timer.NewWorker(s.config())
	c.Assert(err, jc.ErrorIsNil)
	s.AddCleanup(func(c *gc.C) { workertest.DirtyKill(c, w) })
	return w
}

// record subscribes to an attribute and returns a channel receiving
// every dispatched value.
func (s *workerSuite) record(name string) chan any {
	ch := make(chan any, 256)
	s.state.Subscribe(name, func(v any) { ch <- v })
	return ch
}

func (s *workerSuite) next(c *gc.C, ch <-chan any) any {
	select {
	case v := <-ch:
		return v
	case <-time.After(testhelpers.LongWait):
		c.Fatalf("timed out waiting for a dispatched value")
		return nil
	}
}

// tick advances the fake clock by one second once the window counter is
// waiting on it.
func (s *workerSuite) tick(c *gc.C) {
	err := s.clock.WaitAdvance(time.Second, testhelpers.LongWait, 1)
	c.Assert(err, jc.ErrorIsNil)
}

func (s *workerSuite) TestValidate(c *gc.C) {
	type test struct {
		breaker func(*timer.Config)
		message string
	}
	tests := []test{{
		breaker: func(cfg *timer.Config) { cfg.State = nil },
		message: "nil State not valid",
	}, {
		breaker: func(cfg *timer.Config) { cfg.Clock = nil },
		message: "nil Clock not valid",
	}, {
		breaker: func(cfg *timer.Config) { cfg.Locker = nil },
		message: "nil Locker not valid",
	}, {
		breaker: func(cfg *timer.Config) { cfg.Logger = nil },
		message: "nil Logger not valid",
	}}
	for _, t := range tests {
		cfg := s.config()
		t.breaker(&cfg)
		w, err := timer.NewWorker(cfg)
		c.Check(w, gc.IsNil)
		c.Check(err, gc.ErrorMatches, t.message)
	}
}

func (s *workerSuite) TestCleanKill(c *gc.C) {
	w := s.newWorker(c)
	workertest.CleanKill(c, w)
	c.Assert(s.state.SubscriberCount(pomodoro.AttrDelay), gc.Equals, 0)
	c.Assert(s.state.SubscriberCount(pomodoro.AttrRest), gc.Equals, 0)
}

func (s *workerSuite) TestWindowCountsSeconds(c *gc.C) {
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)

	for want := 1; want <= 3; want++ {
		s.tick(c)
		c.Assert(s.next(c, elapsed), gc.Equals, want)
	}
}

func (s *workerSuite) TestSuspendPausesCounting(c *gc.C) {
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	s.tick(c)
	c.Assert(s.next(c, elapsed), gc.Equals, 1)

	s.state.SetSuspend(true)
	s.tick(c)
	select {
	case v := <-elapsed:
		c.Fatalf("suspended tick counted: %v", v)
	case <-time.After(testhelpers.ShortWait):
	}

	s.state.SetSuspend(false)
	s.tick(c)
	c.Assert(s.next(c, elapsed), gc.Equals, 2)
}

func (s *workerSuite) TestWorkWindowEndFlipsToRest(c *gc.C) {
	rest := s.record(pomodoro.AttrRest)
	delay := s.record(pomodoro.AttrDelay)
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.NotifyDelay()
	c.Assert(s.next(c, delay), gc.Equals, 1)
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	for i := 0; i < 60; i++ {
		s.tick(c)
		s.next(c, elapsed)
	}

	c.Assert(s.next(c, rest), gc.Equals, true)
	select {
	case <-s.locker.locked:
	case <-time.After(testhelpers.LongWait):
		c.Fatalf("screen was not locked at end of work window")
	}
	// The mode change restarted the window with the break length.
	c.Assert(s.next(c, delay), gc.Equals, s.state.Break())
}

func (s *workerSuite) TestRestWindowEndDoesNotLock(c *gc.C) {
	s.state.SetRest(true)
	rest := s.record(pomodoro.AttrRest)
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	for i := 0; i < 60; i++ {
		s.tick(c)
		s.next(c, elapsed)
	}

	c.Assert(s.next(c, rest), gc.Equals, false)
	select {
	case <-s.locker.locked:
		c.Fatalf("screen locked at end of a rest window")
	default:
	}
}

func (s *workerSuite) TestLockDisabledBySetting(c *gc.C) {
	s.state.Settings().SetLockScreen(false)
	rest := s.record(pomodoro.AttrRest)
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	for i := 0; i < 60; i++ {
		s.tick(c)
		s.next(c, elapsed)
	}

	c.Assert(s.next(c, rest), gc.Equals, true)
	select {
	case <-s.locker.locked:
		c.Fatalf("screen locked despite the setting")
	default:
	}
}

func (s *workerSuite) TestWindowEndDismissesReminder(c *gc.C) {
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	remind := s.state.EnsureRemind()
	for i := 0; i < 60; i++ {
		s.tick(c)
		s.next(c, elapsed)
	}

	select {
	case <-remind:
	case <-time.After(testhelpers.LongWait):
		c.Fatalf("reminder not dismissed at end of window")
	}
}

func (s *workerSuite) TestWindowRestartDismissesReminder(c *gc.C) {
	remind := s.record(pomodoro.AttrRemind)
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	over := s.state.EnsureRemind()
	c.Assert(s.next(c, remind), gc.Equals, over)

	// Restarting the window dismisses the reminder raised for the
	// window it replaces.
	s.state.NotifyDelay()
	c.Assert(observable.IsDeleted(s.next(c, remind)), jc.IsTrue)
	select {
	case <-over:
	case <-time.After(testhelpers.LongWait):
		c.Fatalf("reminder channel not closed on window restart")
	}
}

func (s *workerSuite) TestReminderRaisedAtLead(c *gc.C) {
	remind := s.record(pomodoro.AttrRemind)
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.SetNotifyLead(58)
	// Wait for the lead watcher to hook onto elapsed: our recorder
	// plus the watcher itself.
	s.waitSubscribers(c, pomodoro.AttrElapsed, 2)

	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	s.tick(c)
	c.Assert(s.next(c, elapsed), gc.Equals, 1)
	select {
	case v := <-remind:
		c.Fatalf("reminder raised too early: %v", v)
	default:
	}

	// At 2 elapsed seconds 58 remain, within the lead.
	s.tick(c)
	c.Assert(s.next(c, elapsed), gc.Equals, 2)
	select {
	case v := <-remind:
		_, ok := v.(chan struct{})
		c.Assert(ok, jc.IsTrue)
	case <-time.After(testhelpers.LongWait):
		c.Fatalf("reminder was not raised")
	}
}

func (s *workerSuite) TestZeroLeadDisablesReminders(c *gc.C) {
	remind := s.record(pomodoro.AttrRemind)
	elapsed := s.record(pomodoro.AttrElapsed)
	s.newWorker(c)

	s.state.SetNotifyLead(0)
	s.state.NotifyDelay()
	c.Assert(s.next(c, elapsed), gc.Equals, 0)
	for i := 0; i < 3; i++ {
		s.tick(c)
		s.next(c, elapsed)
	}

	select {
	case v := <-remind:
		c.Fatalf("unexpected reminder: %v", v)
	case <-time.After(testhelpers.ShortWait):
	}
}

func (s *workerSuite) TestIntervalChangeRestartsWorkWindow(c *gc.C) {
	delay := s.record(pomodoro.AttrDelay)
	s.newWorker(c)

	s.state.SetInterval(2)
	c.Assert(s.next(c, delay), gc.Equals, 2)
}

func (s *workerSuite) TestBreakChangeIgnoredDuringWork(c *gc.C) {
	delay := s.record(pomodoro.AttrDelay)
	s.newWorker(c)

	s.state.SetBreak(2)
	select {
	case v := <-delay:
		c.Fatalf("unexpected window restart: %v", v)
	case <-time.After(testhelpers.ShortWait):
	}
}

func (s *workerSuite) TestBreakChangeRestartsRestWindow(c *gc.C) {
	s.state.SetRest(true)
	delay := s.record(pomodoro.AttrDelay)
	s.newWorker(c)

	s.state.SetBreak(2)
	c.Assert(s.next(c, delay), gc.Equals, 2)
}

func (s *workerSuite) TestIntervalChangeIgnoredDuringRest(c *gc.C) {
	s.state.SetRest(true)
	delay := s.record(pomodoro.AttrDelay)
	s.newWorker(c)

	s.state.SetInterval(2)
	select {
	case v := <-delay:
		c.Fatalf("unexpected window restart: %v", v)
	case <-time.After(testhelpers.ShortWait):
	}
}

func (s *workerSuite) waitSubscribers(c *gc.C, name string, want int) {
	deadline := time.After(testhelpers.LongWait)
	for {
		if s.state.SubscriberCount(name) >= want {
			return
		}
		select {
		case <-deadline:
			c.Fatalf("attribute %q never reached %d subscribers", name, want)
		case <-time.After(time.Millisecond):
		}
	}
}

type lockSpy struct {
	locked chan struct{}
}

func (l *lockSpy) Lock(context.Context) error {
	l.locked <- struct{}{}
	return nil
}
