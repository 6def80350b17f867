// Package stt implements the StateTransitionTable: a statically-allocated,
// sparse four-level trie keyed by (State, Interface, Message) and carrying
// a TransitionFunction plus an unresolved next-state reference, built
// incrementally and then linked into a pointer-chasable state graph
// (spec.md §3.2, §4.2).
package stt

import (
	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/internal/metrics"
)

// transitionSize is the number of levels in one transition: State,
// Interface, Message, TransitionFunction.
const transitionSize = 4

type level int

const (
	levelState level = iota
	levelInterface
	levelMessage
	levelFunction
)

// Element is one trie node. Reference is the identity the node represents
// at its level (state, interface, message, or transition function). Next
// is a sibling index within the same level's linked list, or -1 if this
// element is the last sibling. Before SetNextStates runs, a
// TransitionFunction element additionally carries pendingNext, the raw,
// unresolved next-state identity; SetNextStates consumes it and leaves
// Next pointing at the resolved state element instead of reusing the same
// field for two purposes.
type Element struct {
	Reference   identity.Identity
	Next        int
	pendingNext identity.Identity
}

// NullIndex marks the end of a sibling chain, or (before SetNextStates
// runs) a transition function whose next-state is still unresolved.
const NullIndex = -1

const nullIndex = NullIndex

// HasNext reports whether e.Next refers to another element rather than
// terminating a sibling chain.
func (e Element) HasNext() bool {
	return e.Next != NullIndex
}

type phase uint8

const (
	phaseEmpty phase = iota
	phaseBuilt
	phaseLinked
)

// Table is the flat, fixed-capacity element array plus its builder phase.
// It is single-threaded cooperative (spec.md §5): no method may be called
// concurrently on the same Table from multiple goroutines.
type Table struct {
	elements  []Element
	watermark int
	phase     phase
	root      int

	metrics *metrics.Metrics
}

// SetMetrics attaches a counter sink. A nil Table sink (the default) is a
// silent no-op.
func (t *Table) SetMetrics(m *metrics.Metrics) {
	t.metrics = m
}

// New allocates a table with capacity for exactly n elements. Capacity is
// fixed for the table's lifetime; there is no growth after initialization.
func New(n int) *Table {
	t := &Table{elements: make([]Element, n)}
	t.Clear()
	return t
}

// Clear zeroes the table and returns the builder to phase Empty.
func (t *Table) Clear() {
	for i := range t.elements {
		t.elements[i] = Element{Next: nullIndex}
	}
	t.watermark = 0
	t.phase = phaseEmpty
	t.root = nullIndex
}

// Len returns the table's fixed element capacity.
func (t *Table) Len() int {
	return len(t.elements)
}

// Used returns the number of elements allocated so far.
func (t *Table) Used() int {
	return t.watermark
}

// Phase returns the builder's current phase as a diagnostic string: one of
// "empty", "built", or "linked".
func (t *Table) Phase() string {
	switch t.phase {
	case phaseBuilt:
		return "built"
	case phaseLinked:
		return "linked"
	default:
		return "empty"
	}
}

// States walks the state-level sibling chain rooted at t.root and returns
// every state reference it finds, including dead-state leaves synthesized
// by SetNextStates (they are joined into the same chain, see SetNextStates).
func (t *Table) States() []identity.Identity {
	if t.root == nullIndex {
		return nil
	}
	var out []identity.Identity
	for idx := t.root; idx != nullIndex; idx = t.elements[idx].Next {
		out = append(out, t.elements[idx].Reference)
	}
	return out
}

// allocate reserves n consecutive, previously-unused elements and returns
// the index of the first one. Nothing in this design ever frees an
// element, so a bump watermark already gives the "consecutive free run"
// behavior the builder needs; there is no hole to scan across.
func (t *Table) allocate(n int) (int, error) {
	if t.watermark+n > len(t.elements) {
		return 0, ErrTableExhausted
	}
	idx := t.watermark
	t.watermark += n
	return idx, nil
}

// walkSiblings follows the Next chain from head looking for ref. It
// returns the matching index (or nullIndex if none matched) and always
// also returns the index of the chain's last element, so a caller that
// needs to append can do so without a second walk.
func (t *Table) walkSiblings(head int, ref identity.Identity) (match, tail int) {
	idx := head
	for {
		if t.elements[idx].Reference.Equal(ref) {
			return idx, idx
		}
		if t.elements[idx].Next == nullIndex {
			return nullIndex, idx
		}
		idx = t.elements[idx].Next
	}
}

// createSuffix allocates transitionSize-lvl fresh elements and populates
// them with the levels from lvl through TransitionFunction, wiring
// parent→child by array position (the adjacency convention spec.md §4.2.2
// relies on) and leaving next-state unresolved for the link pass.
func (t *Table) createSuffix(lvl level, state, iface, msg, fn, nextState identity.Identity) (int, error) {
	refs := [transitionSize]identity.Identity{state, iface, msg, fn}
	n := transitionSize - int(lvl)
	idx, err := t.allocate(n)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		t.elements[idx+i] = Element{Reference: refs[int(lvl)+i], Next: nullIndex}
	}
	t.elements[idx+n-1].pendingNext = nextState
	return idx, nil
}

// SetTransition adds one (state, interface, message) → (fn, nextState)
// transition. The very first call on an Empty table seeds the root; later
// calls walk the existing trie and append only the missing suffix
// (spec.md §4.2.2). Calling it after SetNextStates has run is an error.
func (t *Table) SetTransition(state, iface, msg, fn, nextState identity.Identity) error {
	if t.phase == phaseLinked {
		return ErrInvalidState
	}

	if t.phase == phaseEmpty {
		root, err := t.createSuffix(levelState, state, iface, msg, fn, nextState)
		if err != nil {
			return err
		}
		t.root = root
		t.phase = phaseBuilt
		return nil
	}

	stateMatch, stateTail := t.walkSiblings(t.root, state)
	if stateMatch == nullIndex {
		head, err := t.createSuffix(levelState, state, iface, msg, fn, nextState)
		if err != nil {
			return err
		}
		t.elements[stateTail].Next = head
		return nil
	}

	ifaceHead := stateMatch + 1
	ifaceMatch, ifaceTail := t.walkSiblings(ifaceHead, iface)
	if ifaceMatch == nullIndex {
		head, err := t.createSuffix(levelInterface, state, iface, msg, fn, nextState)
		if err != nil {
			return err
		}
		t.elements[ifaceTail].Next = head
		return nil
	}

	msgHead := ifaceMatch + 1
	msgMatch, msgTail := t.walkSiblings(msgHead, msg)
	if msgMatch != nullIndex {
		if t.metrics != nil {
			t.metrics.RecordDuplicateRejected()
		}
		return ErrDuplicateTransition
	}

	head, err := t.createSuffix(levelMessage, state, iface, msg, fn, nextState)
	if err != nil {
		return err
	}
	t.elements[msgTail].Next = head
	return nil
}

// SetNextStates is the link pass (spec.md §4.2.3): every transition
// function's pending next-state identity is resolved to the matching
// state element already in the trie, or, if no transition ever registered
// that state, to a freshly synthesized dead-state leaf. It is legal from
// phaseBuilt, and also from phaseEmpty so that clearing and linking an
// untouched table is a no-op that still reaches Linked (spec.md §8's
// "clear then link on an empty table yields an empty, linked table").
func (t *Table) SetNextStates() error {
	if t.phase == phaseLinked {
		return ErrInvalidState
	}

	for i := 0; i < t.watermark; i++ {
		if t.elements[i].Reference.Kind() != identity.KindFunction {
			continue
		}
		target := t.elements[i].pendingNext

		resolved := nullIndex
		stateTail := nullIndex
		if t.root != nullIndex {
			resolved, stateTail = t.walkSiblings(t.root, target)
		}
		if resolved == nullIndex {
			dead, err := t.allocate(1)
			if err != nil {
				return err
			}
			t.elements[dead] = Element{Reference: target, Next: nullIndex}
			// Join the state-level sibling list so the dead state is
			// discoverable the same way a real state would be.
			if t.root == nullIndex {
				t.root = dead
			} else {
				t.elements[stateTail].Next = dead
			}
			resolved = dead
			if t.metrics != nil {
				t.metrics.RecordDeadStateSynthesized()
			}
		}
		t.elements[i].Next = resolved
	}

	t.phase = phaseLinked
	return nil
}

// IsLinked reports whether SetNextStates has run.
func (t *Table) IsLinked() bool {
	return t.phase == phaseLinked
}

// Element returns a copy of the element at idx, for diagnostics and tests.
func (t *Table) Element(idx int) Element {
	return t.elements[idx]
}

// Resolve looks up the transition function and resolved next-state
// element for (state, iface, msg), walking the trie the same way
// SetTransition does. It requires the table to be Linked; the top-level
// dispatcher this feeds is explicitly out of scope of spec.md §1, but
// callers need some read path to act on a built table.
func (t *Table) Resolve(state, iface, msg identity.Identity) (fn identity.Identity, nextState identity.Identity, ok bool) {
	if t.phase != phaseLinked || t.root == nullIndex {
		return identity.Nil, identity.Nil, false
	}
	stateIdx, _ := t.walkSiblings(t.root, state)
	if stateIdx == nullIndex {
		return identity.Nil, identity.Nil, false
	}
	ifaceIdx, _ := t.walkSiblings(stateIdx+1, iface)
	if ifaceIdx == nullIndex {
		return identity.Nil, identity.Nil, false
	}
	msgIdx, _ := t.walkSiblings(ifaceIdx+1, msg)
	if msgIdx == nullIndex {
		return identity.Nil, identity.Nil, false
	}
	fnIdx := msgIdx + 1
	fnElement := t.elements[fnIdx]
	return fnElement.Reference, t.elements[fnElement.Next].Reference, true
}
