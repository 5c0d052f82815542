package reactive

import (
	"testing"
	"time"
)

func TestEffectsDroppedWithoutObserver(t *testing.T) {
	e := NewEffects[string]()
	if e.Emit("lost") {
		t.Fatal("expected emission without observer to be dropped")
	}
}

func TestEffectsOrderedDelivery(t *testing.T) {
	e := NewEffects[string]()
	ch := e.Attach()

	for _, msg := range []string{"saved", "show-message", "navigate-back"} {
		if !e.Emit(msg) {
			t.Fatalf("expected %q to be delivered", msg)
		}
	}

	want := []string{"saved", "show-message", "navigate-back"}
	for i, w := range want {
		select {
		case got := <-ch:
			if got != w {
				t.Fatalf("position %d: expected %q, got %q", i, w, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func TestEffectsDetach(t *testing.T) {
	e := NewEffects[int]()
	e.Attach()
	e.Detach()
	if e.Emit(1) {
		t.Fatal("expected emission after detach to be dropped")
	}
}

func TestEffectsReattachReplacesObserver(t *testing.T) {
	e := NewEffects[int]()
	old := e.Attach()
	e.Emit(1)

	fresh := e.Attach()
	e.Emit(2)

	select {
	case got := <-fresh:
		if got != 2 {
			t.Fatalf("expected 2 on fresh observer, got %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting on fresh observer")
	}

	// The replaced observer keeps only what was queued before reattach.
	select {
	case got := <-old:
		if got != 1 {
			t.Fatalf("expected stale 1 on old observer, got %d", got)
		}
	default:
		t.Fatal("expected queued value on old observer")
	}
}

func TestEffectsDropWhenBufferFull(t *testing.T) {
	e := NewEffects[int]()
	e.Attach()
	for i := 0; i < effectsBuffer; i++ {
		if !e.Emit(i) {
			t.Fatalf("emission %d should fit in the buffer", i)
		}
	}
	if e.Emit(effectsBuffer) {
		t.Fatal("expected overflow emission to be dropped")
	}
}
