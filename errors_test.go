package statecore

import (
	"errors"
	"testing"

	"github.com/nlowry/go-statecore/mqueue"
)

func TestWrapCategorizesKnownSentinel(t *testing.T) {
	err := Wrap("Prepare", mqueue.ErrQueueOverrun)
	if err == nil {
		t.Fatal("Wrap returned nil for a non-nil error")
	}
	if err.Code != CodeQueueOverrun {
		t.Errorf("expected CodeQueueOverrun, got %s", err.Code)
	}
	if !errors.Is(err, mqueue.ErrQueueOverrun) {
		t.Error("expected errors.Is to see through to the wrapped sentinel")
	}
}

func TestWrapOfNilIsNil(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Error("expected Wrap(op, nil) to return nil")
	}
}

func TestIsCodeMatchesAcrossOpAndMsg(t *testing.T) {
	a := Wrap("Prepare", mqueue.ErrQueueOverrun)
	b := Wrap("CopyAll", mqueue.ErrQueueOverrun)

	if !errors.Is(a, b) {
		t.Error("expected two Errors with the same Code to satisfy errors.Is")
	}
	if !IsCode(a, CodeQueueOverrun) {
		t.Error("expected IsCode to match")
	}
	if IsCode(a, CodeTableExhausted) {
		t.Error("expected IsCode to reject a mismatched Code")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := Wrap("Prepare", mqueue.ErrPayloadTooLarge)
	got := err.Error()
	want := "statecore: Prepare: " + mqueue.ErrPayloadTooLarge.Error()
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
