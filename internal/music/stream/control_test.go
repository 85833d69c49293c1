package stream

import (
	"context"
	"testing"
	"time"
)

func TestControlPauseResume(t *testing.T) {
	c := NewControl(50)

	if c.Resume() {
		t.Error("resume on a running control must report false")
	}
	if !c.Pause() {
		t.Fatal("first pause must succeed")
	}
	if c.Pause() {
		t.Error("second pause must report false")
	}
	if !c.Paused() {
		t.Error("expected paused state")
	}

	done := make(chan error, 1)
	go func() { done <- c.waitUnpaused(context.Background()) }()

	select {
	case <-done:
		t.Fatal("waitUnpaused returned while paused")
	case <-time.After(20 * time.Millisecond):
	}

	if !c.Resume() {
		t.Fatal("resume after pause must succeed")
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waitUnpaused did not return after resume")
	}
}

func TestControlWaitCancelled(t *testing.T) {
	c := NewControl(100)
	c.Pause()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.waitUnpaused(ctx); err == nil {
		t.Error("expected context error")
	}
}

func TestControlVolumeClamp(t *testing.T) {
	c := NewControl(150)
	if c.Volume() != 100 {
		t.Errorf("expected 100, got %d", c.Volume())
	}
	c.SetVolume(-5)
	if c.Volume() != 0 {
		t.Errorf("expected 0, got %d", c.Volume())
	}
}

func TestControlPositionAndFirstFrame(t *testing.T) {
	c := NewControl(100)
	calls := 0
	c.OnFirstFrame(func() { calls++ })
	for i := 0; i < 50; i++ {
		c.frameSent()
	}
	if calls != 1 {
		t.Errorf("expected one first-frame callback, got %d", calls)
	}
	if c.Position() != time.Second {
		t.Errorf("expected 1s, got %v", c.Position())
	}
}
