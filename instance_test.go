package statecore

import (
	"testing"

	"github.com/nlowry/go-statecore/clock"
	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/internal/logging"
	"github.com/nlowry/go-statecore/mqueue"
)

func TestNewInstanceWiresMetricsIntoBothLeaves(t *testing.T) {
	inst := NewInstance(4, 16, clock.NewFake(0), logging.Default())

	s1 := identity.New(identity.KindState, "S1")
	s2 := identity.New(identity.KindState, "S2")
	i1 := identity.New(identity.KindInterface, "I1")
	m1 := identity.New(identity.KindMessage, "M1")
	f1 := identity.New(identity.KindFunction, "F1")

	if err := inst.Table.SetTransition(s1, i1, m1, f1, s2); err != nil {
		t.Fatalf("SetTransition: %v", err)
	}
	if err := inst.Table.SetNextStates(); err != nil {
		t.Fatalf("SetNextStates: %v", err)
	}

	fn, next, err := inst.Dispatch(s1, i1, m1)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !fn.Equal(f1) {
		t.Errorf("expected resolved function F1, got %s", fn.Name())
	}
	if next.Name() != "S2" {
		t.Errorf("expected next state S2, got %s", next.Name())
	}

	if inst.Metrics.Snapshot().DeadStatesSynthesized != 1 {
		t.Errorf("expected one dead state synthesized (S2 never had its own transition), got %+v",
			inst.Metrics.Snapshot())
	}

	// Four zero-payload records fill the 80-byte arena; a fifth reservation
	// is an overrun, which the queue must record in the shared Metrics.
	for i := 0; i < 4; i++ {
		if _, err := inst.Queue.Prepare(m1, 0); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if err := inst.Queue.Send(mqueue.Interface{Name: "I1", Remote: i1}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if _, err := inst.Queue.Prepare(m1, 0); err == nil {
		t.Fatal("expected an overrun on a full queue")
	}
	if inst.Metrics.Snapshot().Overruns != 1 {
		t.Errorf("expected one overrun recorded by the queue, got %+v", inst.Metrics.Snapshot())
	}
}

func TestDispatchUnresolvedReturnsStructuredError(t *testing.T) {
	inst := NewInstance(4, 16, clock.NewFake(0), logging.Default())
	if err := inst.Table.SetNextStates(); err != nil {
		t.Fatalf("SetNextStates: %v", err)
	}

	unknown := identity.New(identity.KindState, "Ghost")
	_, _, err := inst.Dispatch(unknown, identity.Timer, identity.TimeoutInd)
	if err == nil {
		t.Fatal("expected an error for an unresolved dispatch")
	}
	if !IsCode(err, CodeUnresolved) {
		t.Errorf("expected CodeUnresolved, got %v", err)
	}
}
