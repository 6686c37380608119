// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package observable provides an entity holding named attributes whose
// mutations are dispatched synchronously to registered subscribers.
//
// An attribute deletion is dispatched as the Deleted sentinel, which is
// distinct from every value that can be stored via Set, including nil,
// zero and the empty string.
//
// Subscriber callbacks run on the mutating goroutine, under the entity's
// lock; they must be fast, must not block, and must not call back into
// the entity. The stream bridges in core/watcher satisfy this contract
// and are the intended subscribers; application code should consume
// changes through those rather than subscribing directly.
package observable
