// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package pomodoro

import (
	"github.com/juju/pomodoro/core/observable"
)

// Attribute names observed on the shared state entity.
const (
	// AttrRest is true during a break, false during a work window.
	AttrRest = "rest"
	// AttrSuspend is true while the timer is paused.
	AttrSuspend = "suspend"
	// AttrElapsed counts whole seconds into the current window.
	AttrElapsed = "elapsed"
	// AttrDelay is the current window length in minutes; dispatching it
	// restarts the window from zero.
	AttrDelay = "delay"
	// AttrRemind carries a chan struct{} closed when the window ends;
	// its appearance triggers the reminder workflow and its deletion or
	// replacement dismisses it.
	AttrRemind = "remind"
	// AttrNotify is the reminder lead time in seconds.
	AttrNotify = "notify"
	// AttrInterval and AttrBreak mirror the corresponding settings so
	// that changing them can be observed.
	AttrInterval = "interval"
	AttrBreak    = "break"
)

// State is the application's shared observable state: an entity holding
// the timer attributes, with typed accessors, plus the persisted
// settings backing the configuration attributes.
//
// Setting a configuration value through State both persists it and
// dispatches it, so observers see the change.
type State struct {
	*observable.Entity
	settings *Settings
}

// NewState returns a State over a fresh entity, seeded so that every
// attribute has a current value and can therefore be re-dispatched with
// Notify. Call Settings.Load beforehand to pick up persisted values.
func NewState(settings *Settings) *State {
	s := &State{
		Entity:   observable.NewEntity(),
		settings: settings,
	}
	s.Set(AttrRest, false)
	s.Set(AttrSuspend, false)
	s.Set(AttrElapsed, 0)
	s.Set(AttrInterval, settings.Interval())
	s.Set(AttrBreak, settings.Break())
	s.Set(AttrNotify, settings.NotifyLead())
	s.Set(AttrDelay, s.Delay())
	return s
}

// Settings exposes the persisted settings store.
func (s *State) Settings() *Settings {
	return s.settings
}

// Rest reports whether the current window is a break.
func (s *State) Rest() bool {
	v, _ := s.Get(AttrRest)
	rest, _ := v.(bool)
	return rest
}

// SetRest switches between break and work windows.
func (s *State) SetRest(rest bool) {
	s.Set(AttrRest, rest)
}

// Suspend reports whether the timer is paused.
func (s *State) Suspend() bool {
	v, _ := s.Get(AttrSuspend)
	suspend, _ := v.(bool)
	return suspend
}

// SetSuspend pauses or resumes the timer.
func (s *State) SetSuspend(suspend bool) {
	s.Set(AttrSuspend, suspend)
}

// ToggleSuspend flips the suspension state.
func (s *State) ToggleSuspend() {
	s.SetSuspend(!s.Suspend())
}

// Elapsed returns the seconds elapsed in the current window.
func (s *State) Elapsed() int {
	v, _ := s.Get(AttrElapsed)
	elapsed, _ := v.(int)
	return elapsed
}

// SetElapsed records the seconds elapsed in the current window.
func (s *State) SetElapsed(elapsed int) {
	s.Set(AttrElapsed, elapsed)
}

// Interval returns the work window length in minutes.
func (s *State) Interval() int {
	return s.settings.Interval()
}

// SetInterval persists and dispatches a new work window length.
func (s *State) SetInterval(minutes int) {
	s.settings.SetInterval(minutes)
	s.Set(AttrInterval, minutes)
}

// Break returns the rest window length in minutes.
func (s *State) Break() int {
	return s.settings.Break()
}

// SetBreak persists and dispatches a new rest window length.
func (s *State) SetBreak(minutes int) {
	s.settings.SetBreak(minutes)
	s.Set(AttrBreak, minutes)
}

// NotifyLead returns the reminder lead time in seconds.
func (s *State) NotifyLead() int {
	return s.settings.NotifyLead()
}

// SetNotifyLead persists and dispatches a new reminder lead time.
func (s *State) SetNotifyLead(seconds int) {
	s.settings.SetNotifyLead(seconds)
	s.Set(AttrNotify, seconds)
}

// Delay returns the length in minutes of the kind of window currently
// running: the break length during rest, the work interval otherwise.
func (s *State) Delay() int {
	if s.Rest() {
		return s.Break()
	}
	return s.Interval()
}

// NotifyDelay dispatches the current window length, restarting the
// window from zero. It recomputes the value so that a mode or settings
// change is reflected in the restarted window.
func (s *State) NotifyDelay() {
	s.Set(AttrDelay, s.Delay())
}

// Remind returns the current reminder signal channel, if one is active.
func (s *State) Remind() (chan struct{}, bool) {
	v, ok := s.Get(AttrRemind)
	if !ok {
		return nil, false
	}
	ch, ok := v.(chan struct{})
	return ch, ok
}

// EnsureRemind activates the reminder workflow if it is not already
// active, returning the signal channel that ends it.
func (s *State) EnsureRemind() chan struct{} {
	if ch, ok := s.Remind(); ok {
		return ch
	}
	ch := make(chan struct{})
	s.Set(AttrRemind, ch)
	return ch
}

// FinishRemind ends any active reminder: the signal channel is closed,
// dismissing the displayed reminder, and the attribute is deleted.
func (s *State) FinishRemind() {
	ch, ok := s.Remind()
	if !ok {
		return
	}
	close(ch)
	s.Delete(AttrRemind)
}
