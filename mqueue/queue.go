// Package mqueue implements the MessageQueue: a variable-length-record,
// wrap-around ring buffer used to pass time-stamped messages between
// interfaces (spec.md §3.1, §4.1).
package mqueue

import (
	"github.com/nlowry/go-statecore/clock"
	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/internal/metrics"
)

// Interface is the external collaborator contract from spec.md §6: "An
// interface descriptor exposes a remote field (opaque identity) which is
// what the queue stamps into the record."
type Interface struct {
	Name   string
	Remote identity.Identity
}

// Queue is the ring-buffer arena plus its four cursors (spec.md §3.1).
// It is single-threaded cooperative (spec.md §5): no method may be called
// concurrently on the same Queue from multiple goroutines.
type Queue struct {
	arena []byte

	write int
	read  int
	wrap  int
	end   int

	clock   clock.Clock
	handles *identity.HandleTable

	// liveBytes tracks committed-but-unread footprint to support
	// REDESIGN FLAG 1 (overrun detection), since spec.md's own cursor
	// arithmetic has no notion of "how full" the ring is.
	liveBytes int

	hasPending    bool
	pendingOffset int
	pendingSize   int

	metrics *metrics.Metrics
}

// SetMetrics attaches a counter sink. A nil Queue sink (the default) is a
// silent no-op; callers that want wrap/overrun/tombstone counters wire one
// in explicitly, typically once per instance at startup.
func (q *Queue) SetMetrics(m *metrics.Metrics) {
	q.metrics = m
}

// New creates a Queue sized to hold capacityRecords empty records (spec.md
// §4.1.1's "initialize"). clk supplies the monotonic tick stamped at Send
// time (spec.md §6); a nil clk defaults to clock.Monotonic{}.
func New(capacityRecords int, clk clock.Clock) *Queue {
	if clk == nil {
		clk = clock.Monotonic{}
	}
	size := capacityRecords * EmptyRecordSize
	q := &Queue{
		arena:   make([]byte, size),
		clock:   clk,
		handles: identity.NewHandleTable(),
	}
	q.reset()
	return q
}

// reset implements "initialize": write = read = arena_base, wrap = end =
// arena_base + capacity_records*empty_record_size.
func (q *Queue) reset() {
	q.write = 0
	q.read = 0
	q.end = len(q.arena)
	q.wrap = q.end
	q.liveBytes = 0
	q.hasPending = false
}

// Capacity returns the arena size in bytes.
func (q *Queue) Capacity() int {
	return len(q.arena)
}

// IsEmpty reports whether the logical queue holds no unread records.
// A fully-occupied queue can have read == write by coincidence (the
// cursors lap each other exactly), so emptiness is decided by liveBytes
// rather than by comparing the cursors directly.
func (q *Queue) IsEmpty() bool {
	return q.liveBytes == 0
}

// Occupied returns the number of committed-but-unread bytes currently held.
func (q *Queue) Occupied() int {
	return q.liveBytes
}

// Cursors returns the raw write, read and wrap offsets, for diagnostics.
// wrap == the arena length means no wrap is currently active.
func (q *Queue) Cursors() (write, read, wrap int) {
	return q.write, q.read, q.wrap
}

// HasWrapped reports whether a wrap is currently active (wrap != end). It
// returns false again once a commit moves write past the wrap position,
// since commit then resets wrap to end.
func (q *Queue) HasWrapped() bool {
	return q.wrap != q.end
}

// reserve implements the spec.md §4.1.2 wrap-then-write algorithm, shared
// by Prepare (fresh record) and the destination side of CopyAll (verbatim
// record copy). It returns the offset at which the record's header prefix
// (size/system_time/interface_tag) begins.
func (q *Queue) reserve(payloadSize int) (int, error) {
	need := footprint(payloadSize)
	if need > len(q.arena) {
		return 0, ErrPayloadTooLarge
	}
	wastedIfWrap := 0
	if need > q.end-q.write {
		wastedIfWrap = q.end - q.write
	}
	// Best-effort: this still doesn't account for tail waste left by an
	// earlier, already-superseded wrap (spec.md §9's "wrap done for
	// nothing" case), so it can occasionally admit a reservation a
	// byte-exact accounting would reject. It never rejects a reservation
	// that would actually fit.
	if need+wastedIfWrap > len(q.arena)-q.liveBytes {
		if q.metrics != nil {
			q.metrics.RecordOverrun()
		}
		return 0, ErrQueueOverrun
	}

	if need > q.end-q.write {
		// wrap now marks the abandoned tail (the old write position); a
		// reader sitting exactly there had drained everything up to it and
		// would otherwise be stranded past the segment that's about to
		// start over at arena_base.
		q.wrap = q.write
		q.write = 0
		if q.read == q.wrap {
			q.read = 0
		}
		if q.metrics != nil {
			q.metrics.RecordWrap()
		}
	}

	off := q.write
	putSize(q.arena, off, uint32(payloadSize))
	return off, nil
}

// commit writes system_time and interface_tag, then advances write past the
// record, applying the two post-write wrap rules from spec.md §4.1.2.
func (q *Queue) commit(off, payloadSize int, systemTime uint64, tagHandle uint64) {
	putSystemTime(q.arena, off, systemTime)
	putInterfaceTag(q.arena, off, tagHandle)

	newWrite := off + footprint(payloadSize)
	if q.wrap != q.end && newWrite > q.wrap {
		q.wrap = q.end
	}
	if newWrite == q.end {
		newWrite = 0
	}
	q.write = newWrite
	q.liveBytes += footprint(payloadSize)
}

// Prepare reserves space for one record and returns a writable slice the
// caller fills with the payload (spec.md §4.1.1: "Returns a pointer at
// which the caller may write the payload. Does NOT make the record
// visible."). messageID is written transiently into the slot the payload
// is about to alias, per §6.
func (q *Queue) Prepare(messageID identity.Identity, payloadSize int) ([]byte, error) {
	off, err := q.reserve(payloadSize)
	if err != nil {
		return nil, err
	}
	idHandle := q.handles.Encode(messageID)
	putMessageID(q.arena, off, payloadSize, idHandle)

	q.hasPending = true
	q.pendingOffset = off
	q.pendingSize = payloadSize

	return q.arena[off+payloadOffset : off+payloadOffset+payloadSize], nil
}

// Send commits the record reserved by the most recent Prepare call,
// stamping system_time from the clock and interface_tag from iface.Remote
// (spec.md §4.1.1).
func (q *Queue) Send(iface Interface) error {
	if !q.hasPending {
		return ErrNoPendingRecord
	}
	tagHandle := q.handles.Encode(iface.Remote)
	q.commit(q.pendingOffset, q.pendingSize, q.clock.Now(), tagHandle)
	q.hasPending = false
	return nil
}

// peek decodes the record at offset off without mutating any cursor.
func (q *Queue) peek(off int) Record {
	size := getSize(q.arena, off)
	payload := make([]byte, size)
	copy(payload, q.arena[off+payloadOffset:off+payloadOffset+int(size)])
	return Record{
		Size:         size,
		SystemTime:   getSystemTime(q.arena, off),
		InterfaceTag: getInterfaceTag(q.arena, off),
		Payload:      payload,
	}
}

// Peek returns the oldest unconsumed record without advancing read, or
// false if the queue is empty.
func (q *Queue) Peek() (Record, bool) {
	if q.IsEmpty() {
		return Record{}, false
	}
	return q.peek(q.read), true
}

// InterfaceTagIdentity decodes a Record's raw InterfaceTag handle back into
// an identity.Identity using this queue's handle table.
func (q *Queue) InterfaceTagIdentity(r Record) identity.Identity {
	return q.handles.Decode(r.InterfaceTag)
}

// AdvanceRead steps read past the current record, applying the same wrap
// rule as write (spec.md §4.1.1's external NEXT_MESSAGE macro). It is a
// no-op on an empty queue.
func (q *Queue) AdvanceRead() {
	if q.IsEmpty() {
		return
	}
	size := getSize(q.arena, q.read)
	newRead := q.read + footprint(int(size))

	switch {
	case newRead == q.write:
		// Caught up to the writer exactly; whatever newRead's raw value is,
		// nothing is left to traverse, so no wrap jump is needed.
	case q.wrap != q.end && newRead >= q.wrap:
		newRead = 0
	case newRead == q.end:
		newRead = 0
	}
	q.read = newRead
	q.liveBytes -= footprint(int(size))
	if q.liveBytes < 0 {
		q.liveBytes = 0
	}
}

// CopyAll implements spec.md §4.1.3: traverse src by logical record order,
// silently drop tombstones, append a byte-for-byte copy of every surviving
// record to dst (without re-stamping time or interface), and drain src to
// empty regardless of whether a record was copied or dropped.
func CopyAll(src, dst *Queue) error {
	for !src.IsEmpty() {
		rec := src.peek(src.read)
		if rec.IsTombstone() {
			if src.metrics != nil {
				src.metrics.RecordTombstoneSkipped()
			}
		} else {
			tagID := src.handles.Decode(rec.InterfaceTag)
			dstTagHandle := dst.handles.Encode(tagID)

			off, err := dst.reserve(int(rec.Size))
			if err != nil {
				return err
			}
			copy(dst.arena[off+payloadOffset:off+payloadOffset+int(rec.Size)], rec.Payload)
			dst.commit(off, int(rec.Size), rec.SystemTime, dstTagHandle)
		}
		src.AdvanceRead()
	}
	return nil
}
