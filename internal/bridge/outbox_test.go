package bridge

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestOutbox_QueueAndDrain(t *testing.T) {
	o := NewOutbox(zap.NewNop(), 0)

	if err := o.Mount("https://www.youtube.com/embed/abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.Post([]byte(`{"event":"command","func":"playVideo","args":[]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.Unmount(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ops := o.Drain()
	if len(ops) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(ops))
	}
	kinds := []string{OpMount, OpPost, OpUnmount}
	for i, kind := range kinds {
		if ops[i].Kind != kind {
			t.Errorf("op %d: expected %s, got %s", i, kind, ops[i].Kind)
		}
	}
	if got := o.Drain(); len(got) != 0 {
		t.Errorf("drain should empty the queue, got %d", len(got))
	}
}

func TestOutbox_DropsOldest(t *testing.T) {
	o := NewOutbox(zap.NewNop(), 2)
	_ = o.Mount("a")
	_ = o.Mount("b")
	_ = o.Mount("c")

	ops := o.Drain()
	if len(ops) != 2 || ops[0].URL != "b" || ops[1].URL != "c" {
		t.Errorf("expected [b c], got %+v", ops)
	}
}

func TestOutbox_RejectsInvalidMessage(t *testing.T) {
	o := NewOutbox(zap.NewNop(), 4)
	if err := o.Post([]byte("{broken")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if len(o.Drain()) != 0 {
		t.Error("invalid message should not be queued")
	}
}

func TestOutbox_Close(t *testing.T) {
	o := NewOutbox(zap.NewNop(), 4)
	_ = o.Mount("a")
	if err := o.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.Mount("b"); !errors.Is(err, ErrOutboxClosed) {
		t.Errorf("expected ErrOutboxClosed, got %v", err)
	}
	if err := o.Close(); !errors.Is(err, ErrOutboxClosed) {
		t.Errorf("second close: expected ErrOutboxClosed, got %v", err)
	}
	if len(o.Drain()) != 0 {
		t.Error("close should discard queued operations")
	}
}
