// Package clock provides the monotonic time source the message queue stamps
// into sent records (spec.md §6: "system_time := GetSystemTime() returns a
// monotonic integer tick at send time"). It is modeled as an injected
// collaborator rather than a process-wide singleton, per spec.md §9's design
// note ("model as injected collaborators, not as process-wide singletons").
package clock

import "golang.org/x/sys/unix"

// Clock returns a monotonic tick. Implementations must never go backwards.
type Clock interface {
	Now() uint64
}

// Monotonic reads CLOCK_MONOTONIC via golang.org/x/sys/unix, the same
// low-level syscall package the teacher reaches for directly in
// internal/uring for OS primitives.
type Monotonic struct{}

// Now returns the current monotonic time in nanoseconds.
func (Monotonic) Now() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint64(ts.Sec)*1_000_000_000 + uint64(ts.Nsec)
}

// Fake is a settable clock for deterministic tests.
type Fake struct {
	t uint64
}

// NewFake creates a Fake clock starting at the given tick.
func NewFake(start uint64) *Fake {
	return &Fake{t: start}
}

// Now returns the current fake tick.
func (f *Fake) Now() uint64 {
	return f.t
}

// Advance moves the fake clock forward by delta ticks and returns the new
// value.
func (f *Fake) Advance(delta uint64) uint64 {
	f.t += delta
	return f.t
}

// Set pins the fake clock to an exact tick.
func (f *Fake) Set(t uint64) {
	f.t = t
}
