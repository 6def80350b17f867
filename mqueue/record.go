package mqueue

import "encoding/binary"

// Field widths, per spec.md §3.1/§6. The header, in declaration order, is
// {message_id, size, system_time, interface_tag}; the physical layout below
// places the non-aliased fields first and the message_id field last so that
// it sits immediately before — and is the same bytes as — the start of the
// payload, matching §6's "payload begins at the address of message_id and
// has length size (i.e., the payload overlays and extends past the
// message_id slot)".
//
// spec.md explicitly marks byte-exact wire compatibility a Non-goal, so
// message_id is encoded as a stable 8-byte identity.HandleTable handle
// rather than a raw pointer; the space-saving aliasing trick itself — the
// thing the design notes ask to preserve "if the same space saving is
// desired" — is kept byte-for-byte.
const (
	idFieldSize   = 8 // message_id (and interface_tag) handle width
	sizeFieldSize = 4
	timeFieldSize = 8
	tagFieldSize  = 8

	// headerPrefixSize is the number of header bytes that are NOT aliased
	// with the payload: size, system_time, interface_tag.
	headerPrefixSize = sizeFieldSize + timeFieldSize + tagFieldSize // 20

	// HeaderSize is the full conceptual header width (message_id, size,
	// system_time, interface_tag) before the aliasing discount.
	HeaderSize = headerPrefixSize + idFieldSize // 28

	// EmptyRecordSize is the footprint of a zero-payload record:
	// header_size + size - id_field_size with size == 0.
	EmptyRecordSize = headerPrefixSize // 20

	sizeOffset = 0
	timeOffset = sizeFieldSize
	tagOffset  = sizeFieldSize + timeFieldSize
	// payloadOffset is also where the transient message_id handle is
	// written by Prepare, before the caller's payload write aliases it.
	payloadOffset = headerPrefixSize
)

// footprint returns header_size + payloadSize - id_field_size, the total
// arena bytes a record of the given payload size occupies.
func footprint(payloadSize int) int {
	return headerPrefixSize + payloadSize
}

func putSize(buf []byte, off int, size uint32) {
	binary.LittleEndian.PutUint32(buf[off+sizeOffset:], size)
}

func getSize(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off+sizeOffset:])
}

func putSystemTime(buf []byte, off int, t uint64) {
	binary.LittleEndian.PutUint64(buf[off+timeOffset:], t)
}

func getSystemTime(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off+timeOffset:])
}

func putInterfaceTag(buf []byte, off int, handle uint64) {
	binary.LittleEndian.PutUint64(buf[off+tagOffset:], handle)
}

func getInterfaceTag(buf []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(buf[off+tagOffset:])
}

// putMessageID writes the transient message_id handle into the slot the
// payload is about to alias. Only the bytes that fit within payloadSize are
// written, matching the aliasing rule for size < id_field_size.
func putMessageID(buf []byte, off int, payloadSize int, handle uint64) {
	n := idFieldSize
	if payloadSize < n {
		n = payloadSize
	}
	if n <= 0 {
		return
	}
	var tmp [idFieldSize]byte
	binary.LittleEndian.PutUint64(tmp[:], handle)
	copy(buf[off+payloadOffset:off+payloadOffset+n], tmp[:n])
}

// Record is a decoded, self-contained view of one record returned by read
// APIs. It does not alias the arena.
type Record struct {
	Size         uint32
	SystemTime   uint64
	InterfaceTag uint64 // encoded handle; Nil (tombstone) iff 0
	Payload      []byte // copy, length Size
}

// IsTombstone reports whether the record is logically deleted (spec.md
// §3.1 invariant 5: "A record with interface_tag == ∅ is a tombstone").
func (r Record) IsTombstone() bool {
	return r.InterfaceTag == 0
}
