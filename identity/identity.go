// Package identity implements the single opaque handle type shared by the
// message queue and the state transition table: a tagged, address-equal
// identity standing in for a state, an interface, a message, or a
// transition function.
//
// The historical design encodes all four of those as raw untyped pointers
// and relies on pointer equality to compare them. This package keeps that
// equality semantic (two Identities compare equal iff they were interned
// from the same name through the same Registry, i.e. they share the same
// backing *entry) without resorting to void pointers.
package identity

// Kind tags what an Identity stands for. It has no effect on equality —
// two Identities with different declared Kind still compare unequal only
// because they were interned separately, never because of Kind — but it
// makes diagnostics and YAML-driven config errors readable.
type Kind uint8

const (
	KindState Kind = iota
	KindInterface
	KindMessage
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindInterface:
		return "interface"
	case KindMessage:
		return "message"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// entry is the single allocation an Identity's equality is defined against.
// Its address is the identity; Name is carried only for diagnostics, per
// spec.md's "the literal's text is available for diagnostics but is not
// semantically meaningful."
type entry struct {
	Name string
	Kind Kind
}

// Identity is an opaque, comparable handle. The zero value is the "null"
// identity used by a tombstone's interface_tag and by an element with no
// reference.
type Identity struct {
	e *entry
}

// Nil is the null identity (spec.md: interface_tag == ∅ marks a tombstone).
var Nil Identity

// IsNil reports whether id is the null identity.
func (id Identity) IsNil() bool {
	return id.e == nil
}

// Equal compares two identities by address, matching the historical
// pointer-equality contract for message-id and reference comparisons.
func (id Identity) Equal(other Identity) bool {
	return id.e == other.e
}

// Name returns the diagnostic name the identity was interned with, or ""
// for the null identity.
func (id Identity) Name() string {
	if id.e == nil {
		return ""
	}
	return id.e.Name
}

// Kind returns the declared kind, meaningless for the null identity.
func (id Identity) Kind() Kind {
	if id.e == nil {
		return Kind(0)
	}
	return id.e.Kind
}

func (id Identity) String() string {
	if id.e == nil {
		return "<nil>"
	}
	return id.e.Name
}

// Well-known interface and message identities, predeclared as spec.md §6
// requires: "A well-known interface named 'Timer' exists; it is the source
// of messages carrying the identity TimeoutInd."
var (
	Timer      = New(KindInterface, "Timer")
	TimeoutInd = New(KindMessage, "TimeoutInd")
)

// New mints a fresh, independently-addressed Identity. Two calls with the
// same name and kind produce two distinct, unequal identities — use a
// Registry when names must intern to a single stable handle (e.g. when
// building a table from repeated, named references in a config file).
func New(kind Kind, name string) Identity {
	return Identity{e: &entry{Name: name, Kind: kind}}
}

// Registry interns names to stable Identity handles so that repeated
// mentions of the same name (e.g. "S1" appearing in many transitions of a
// declarative config) resolve to the same, pointer-equal Identity.
type Registry struct {
	byKind map[Kind]map[string]Identity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[Kind]map[string]Identity)}
}

// Intern returns the Identity for (kind, name), minting one on first use.
func (r *Registry) Intern(kind Kind, name string) Identity {
	names, ok := r.byKind[kind]
	if !ok {
		names = make(map[string]Identity)
		r.byKind[kind] = names
	}
	id, ok := names[name]
	if !ok {
		id = New(kind, name)
		names[name] = id
	}
	return id
}

// Len returns the number of distinct identities interned across all kinds.
func (r *Registry) Len() int {
	n := 0
	for _, names := range r.byKind {
		n += len(names)
	}
	return n
}

// HandleTable assigns each distinct Identity a stable, fixed-width uint64
// handle so it can be written into a byte-oriented record header (see
// mqueue) without resorting to unsafe pointer arithmetic. Handle 0 is
// reserved for Nil, matching spec.md's interface_tag == ∅ tombstone marker.
type HandleTable struct {
	toHandle map[*entry]uint64
	toIdent  []Identity // index 0 unused (reserved for Nil)
}

// NewHandleTable creates an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{
		toHandle: make(map[*entry]uint64),
		toIdent:  []Identity{Nil},
	}
}

// Encode returns the stable handle for id, minting one on first use.
func (t *HandleTable) Encode(id Identity) uint64 {
	if id.IsNil() {
		return 0
	}
	if h, ok := t.toHandle[id.e]; ok {
		return h
	}
	h := uint64(len(t.toIdent))
	t.toHandle[id.e] = h
	t.toIdent = append(t.toIdent, id)
	return h
}

// Decode returns the Identity for a previously-encoded handle, or Nil for
// handle 0 or an unknown handle.
func (t *HandleTable) Decode(h uint64) Identity {
	if h == 0 || h >= uint64(len(t.toIdent)) {
		return Nil
	}
	return t.toIdent[h]
}
