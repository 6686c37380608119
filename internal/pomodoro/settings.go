// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package pomodoro

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
)

// Settings are delegated to the process environment, so that child
// processes inherit them and an externally exported variable overrides
// the persisted value.
const (
	EnvInterval  = "POMODORO_INTERVAL"
	EnvBreak     = "POMODORO_BREAK"
	EnvNotify    = "POMODORO_NOTIFY"
	EnvAllowSkip = "POMODORO_ALLOWSKIP"
	EnvLock      = "POMODORO_LOCK"
	EnvAudio     = "POMODORO_AUDIO"
	EnvJingle    = "POMODORO_JINGLE"
)

// SettingKeys lists every environment variable the settings store owns.
var SettingKeys = set.NewStrings(
	EnvInterval,
	EnvBreak,
	EnvNotify,
	EnvAllowSkip,
	EnvLock,
	EnvAudio,
	EnvJingle,
)

// Defaults, matching the traditional pomodoro shape: half an hour of
// work, a quarter hour of rest, a 30 second warning.
const (
	DefaultInterval   = 30
	DefaultBreak      = 15
	DefaultNotifyLead = 30
)

// Settings reads and writes the timer's configuration. Values live in
// the process environment; Load and Save round-trip them through a
// KEY=VALUE file in the user's configuration directory.
type Settings struct {
	resource string
}

// NewSettings returns a settings store persisting under the named
// resource directory, e.g. "pomodoro".
func NewSettings(resource string) *Settings {
	return &Settings{resource: resource}
}

func intSetting(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func boolSetting(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	return raw != "0"
}

func setInt(key string, value int) {
	os.Setenv(key, strconv.Itoa(value))
}

func setBool(key string, value bool) {
	if value {
		os.Setenv(key, "1")
	} else {
		os.Setenv(key, "0")
	}
}

// Interval is the work window length in minutes.
func (s *Settings) Interval() int { return intSetting(EnvInterval, DefaultInterval) }

// SetInterval sets the work window length in minutes.
func (s *Settings) SetInterval(v int) { setInt(EnvInterval, v) }

// Break is the rest window length in minutes.
func (s *Settings) Break() int { return intSetting(EnvBreak, DefaultBreak) }

// SetBreak sets the rest window length in minutes.
func (s *Settings) SetBreak(v int) { setInt(EnvBreak, v) }

// NotifyLead is how many seconds before a window ends the reminder is
// shown. Zero disables reminders.
func (s *Settings) NotifyLead() int { return intSetting(EnvNotify, DefaultNotifyLead) }

// SetNotifyLead sets the reminder lead time in seconds.
func (s *Settings) SetNotifyLead(v int) { setInt(EnvNotify, v) }

// AllowSkip reports whether the reminder offers skipping the break.
func (s *Settings) AllowSkip() bool { return boolSetting(EnvAllowSkip, true) }

// SetAllowSkip sets whether the reminder offers skipping the break.
func (s *Settings) SetAllowSkip(v bool) { setBool(EnvAllowSkip, v) }

// LockScreen reports whether the screen is locked when a break starts.
func (s *Settings) LockScreen() bool { return boolSetting(EnvLock, true) }

// SetLockScreen sets whether the screen is locked when a break starts.
func (s *Settings) SetLockScreen(v bool) { setBool(EnvLock, v) }

// Audio reports whether an audio cue accompanies the reminder.
func (s *Settings) Audio() bool { return boolSetting(EnvAudio, true) }

// SetAudio sets whether an audio cue accompanies the reminder.
func (s *Settings) SetAudio(v bool) { setBool(EnvAudio, v) }

// Jingle is the path of the audio file played with the reminder.
func (s *Settings) Jingle() string { return os.Getenv(EnvJingle) }

// SetJingle sets the path of the audio file played with the reminder.
func (s *Settings) SetJingle(v string) { os.Setenv(EnvJingle, v) }

// AudioFile returns the jingle path if audio is enabled and the file
// exists, else the empty string.
func (s *Settings) AudioFile() string {
	jingle := s.Jingle()
	if !s.Audio() || jingle == "" {
		return ""
	}
	if info, err := os.Stat(jingle); err != nil || info.IsDir() {
		return ""
	}
	return jingle
}

func (s *Settings) path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Trace(err)
	}
	return filepath.Join(dir, s.resource, "env"), nil
}

// Load reads the persisted settings file, if present, into the process
// environment. A variable already exported by the user wins over the
// persisted value.
func (s *Settings) Load() error {
	path, err := s.path()
	if err != nil {
		return errors.Trace(err)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || !SettingKeys.Contains(key) {
			continue
		}
		if _, exported := os.LookupEnv(key); exported {
			continue
		}
		os.Setenv(key, value)
	}
	return errors.Trace(scanner.Err())
}

// Save writes every setting currently present in the environment to the
// persisted settings file, creating the resource directory as needed.
func (s *Settings) Save() error {
	path, err := s.path()
	if err != nil {
		return errors.Trace(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Trace(err)
	}

	var lines []string
	for _, key := range SettingKeys.SortedValues() {
		if value, ok := os.LookupEnv(key); ok {
			lines = append(lines, fmt.Sprintf("%s=%s", key, value))
		}
	}
	content := strings.Join(lines, "\n") + "\n"
	return errors.Trace(os.WriteFile(path, []byte(content), 0644))
}
