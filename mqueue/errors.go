package mqueue

import "errors"

// ErrQueueOverrun is returned by Prepare when the reservation would make the
// producer lap the consumer. spec.md §4.1.4 leaves this undefined
// ("caller's contract is to size correctly"); SPEC_FULL.md REDESIGN FLAG 1
// upgrades this to an actively detected, recoverable error instead of
// silently corrupting the ring, per spec.md §9's own recommendation.
var ErrQueueOverrun = errors.New("mqueue: queue overrun")

// ErrNoPendingRecord is returned by Send when called without a preceding
// Prepare, or after the prepared record was already sent. The queue's
// two-phase append protocol (spec.md §4.1.1) requires callers to alternate
// Prepare/Send.
var ErrNoPendingRecord = errors.New("mqueue: send called with no pending record")

// ErrPayloadTooLarge is returned by Prepare when a single record could never
// fit in the queue's capacity regardless of occupancy.
var ErrPayloadTooLarge = errors.New("mqueue: payload exceeds queue capacity")
