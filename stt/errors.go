package stt

import "errors"

// ErrTableExhausted is returned when an allocation cannot find enough
// consecutive free elements. spec.md §4.2.5 treats this as fatal
// (assertion) in the historical design; SPEC_FULL.md REDESIGN FLAG 2
// upgrades it to a returned error.
var ErrTableExhausted = errors.New("stt: table exhausted")

// ErrDuplicateTransition is returned by SetTransition when the
// (state, interface, message) triple is already present. The table is
// left unchanged.
var ErrDuplicateTransition = errors.New("stt: duplicate transition")

// ErrInvalidState is returned when a builder operation is attempted
// outside the phase that permits it (Empty/Built/Linked).
var ErrInvalidState = errors.New("stt: invalid builder phase for this operation")
