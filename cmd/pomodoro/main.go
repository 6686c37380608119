// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Command pomodoro runs a pomodoro timer as a plain process: it counts
// work and rest windows, reminds shortly before each switch, optionally
// locks the screen when a break starts, and reacts to signals (SIGUSR1
// pauses, SIGUSR2 restarts the current window).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"

	"github.com/juju/pomodoro/internal/notify"
	"github.com/juju/pomodoro/internal/pomodoro"
	"github.com/juju/pomodoro/internal/worker/reminder"
	"github.com/juju/pomodoro/internal/worker/signalhandler"
	"github.com/juju/pomodoro/internal/worker/timer"
)

var logger = loggo.GetLogger("pomodoro.cmd")

func main() {
	os.Exit(Main(os.Args[1:]))
}

// Main runs the pomodoro command with the supplied arguments, returning
// the process exit code.
func Main(args []string) int {
	f := gnuflag.NewFlagSetWithFlagKnownAs("pomodoro", gnuflag.ContinueOnError, "option")
	var (
		interval = f.Int("interval", 0, "work window length in minutes (overrides saved settings)")
		brk      = f.Int("break", 0, "rest window length in minutes (overrides saved settings)")
		lead     = f.Int("notify", -1, "reminder lead time in seconds, 0 to disable")
		noLock   = f.Bool("no-lock", false, "do not lock the screen when a break starts")
		headless = f.Bool("headless", false, "log reminders instead of showing desktop notifications")
		debug    = f.Bool("debug", false, "enable debug logging")
	)
	if err := f.Parse(true, args); err != nil {
		if err == gnuflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	level := "INFO"
	if *debug {
		level = "DEBUG"
	}
	if err := loggo.ConfigureLoggers("<root>=" + level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	settings := pomodoro.NewSettings("pomodoro")
	if err := settings.Load(); err != nil {
		logger.Warningf("loading settings: %v", err)
	}
	st := pomodoro.NewState(settings)
	if *interval > 0 {
		st.SetInterval(*interval)
	}
	if *brk > 0 {
		st.SetBreak(*brk)
	}
	if *lead >= 0 {
		st.SetNotifyLead(*lead)
	}
	if *noLock {
		settings.SetLockScreen(false)
	}

	if err := run(st, *headless); err != nil && !errors.Is(err, signalhandler.ErrShutdown) {
		logger.Errorf("%v", err)
		return 1
	}
	if err := settings.Save(); err != nil {
		logger.Warningf("saving settings: %v", err)
	}
	return 0
}

func run(st *pomodoro.State, headless bool) error {
	locker := timer.NewExecLocker()
	notifier := notify.NewExecNotifier()
	player := notify.NewExecPlayer()
	if headless {
		locker = timer.NewNopLocker()
		notifier = notify.NewNopNotifier()
		player = notify.NewNopPlayer()
	}

	timerWorker, err := timer.NewWorker(timer.Config{
		State:  st,
		Clock:  clock.WallClock,
		Locker: locker,
		Logger: loggo.GetLogger("pomodoro.timer"),
	})
	if err != nil {
		return errors.Trace(err)
	}
	reminderWorker, err := reminder.NewWorker(reminder.Config{
		State:    st,
		Notifier: notifier,
		Player:   player,
		Logger:   loggo.GetLogger("pomodoro.reminder"),
	})
	if err != nil {
		return errors.Trace(err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigCh)
	signalWorker, err := signalhandler.NewSignalWatcher(
		loggo.GetLogger("pomodoro.signal"), sigCh, signalhandler.StateHandler(st))
	if err != nil {
		return errors.Trace(err)
	}

	app, err := newSupervisor(timerWorker, reminderWorker, signalWorker)
	if err != nil {
		return errors.Trace(err)
	}

	// Everything is subscribed; kick the first window off and arm the
	// reminder lead.
	st.NotifyDelay()
	if _, err := st.Notify(pomodoro.AttrNotify); err != nil {
		return errors.Trace(err)
	}

	return app.Wait()
}
