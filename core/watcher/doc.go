// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package watcher turns the synchronous dispatch of core/observable
// into asynchronous value streams, and provides the two drivers that
// bind handlers to those streams.
//
// AttributeWatcher is the stream bridge: one subscription, one pending
// slot, last write wins. SequentialWorker runs its handler to completion
// for each delivered value, never overlapping invocations.
// ExclusiveWorker cancels a still-running invocation as soon as a newer
// value arrives, guaranteeing at most one live invocation.
//
// Delivery within one watcher is in dispatch order, but intermediate
// values may be dropped: the contract is "eventually latest", not
// "every value". There is no ordering across distinct attribute names.
package watcher
