package diag

import (
	"strings"
	"testing"

	"github.com/nlowry/go-statecore/clock"
	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/mqueue"
	"github.com/nlowry/go-statecore/stt"
)

func TestQueueSnapshotReflectsOccupancy(t *testing.T) {
	q := mqueue.New(4, clock.Monotonic{})
	iface := mqueue.Interface{Name: "A", Remote: identity.New(identity.KindInterface, "A")}
	msg := identity.New(identity.KindMessage, "X")

	info := QueueSnapshot(q)
	if !info.Empty {
		t.Errorf("expected a fresh queue to report empty, got %+v", info)
	}

	payload, err := q.Prepare(msg, 4)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	copy(payload, []byte{1, 2, 3, 4})
	if err := q.Send(iface); err != nil {
		t.Fatalf("Send: %v", err)
	}

	info = QueueSnapshot(q)
	if info.Empty {
		t.Error("expected a non-empty queue after Send")
	}
	if info.OccupiedBytes <= 0 {
		t.Errorf("expected positive OccupiedBytes, got %d", info.OccupiedBytes)
	}

	encoded, err := info.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(encoded, `"occupied_bytes"`) {
		t.Errorf("expected occupied_bytes field in encoded output, got: %s", encoded)
	}
}

func TestTableSnapshotReportsPhaseAndStates(t *testing.T) {
	table := stt.New(16)
	s1 := identity.New(identity.KindState, "S1")
	s2 := identity.New(identity.KindState, "S2")
	i1 := identity.New(identity.KindInterface, "I1")
	m1 := identity.New(identity.KindMessage, "M1")
	f1 := identity.New(identity.KindFunction, "F1")

	info := TableSnapshot(table)
	if info.Phase != "empty" {
		t.Errorf("expected phase empty, got %s", info.Phase)
	}

	if err := table.SetTransition(s1, i1, m1, f1, s2); err != nil {
		t.Fatalf("SetTransition: %v", err)
	}
	if err := table.SetNextStates(); err != nil {
		t.Fatalf("SetNextStates: %v", err)
	}

	info = TableSnapshot(table)
	if info.Phase != "linked" {
		t.Errorf("expected phase linked, got %s", info.Phase)
	}
	if len(info.States) != 2 {
		t.Errorf("expected S1 and the synthesized dead state S2, got %v", info.States)
	}

	encoded, err := info.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(encoded, `"S1"`) {
		t.Errorf("expected S1 in encoded states, got: %s", encoded)
	}
}
