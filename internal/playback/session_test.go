package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		from State
		ev   sessionEvent
		prev State
		want State
		ok   bool
	}{
		{"connecting plays", StateConnecting, evPlaying, 0, StatePlaying, true},
		{"connecting cannot pause", StateConnecting, evPause, 0, StateConnecting, false},
		{"pause", StatePlaying, evPause, 0, StatePaused, true},
		{"pause twice", StatePaused, evPause, 0, StatePaused, false},
		{"resume", StatePaused, evResume, 0, StatePlaying, true},
		{"resume while playing", StatePlaying, evResume, 0, StatePlaying, false},
		{"playing drops", StatePlaying, evDisconnected, 0, StateReconnecting, true},
		{"paused drops", StatePaused, evDisconnected, 0, StateReconnecting, true},
		{"reconnected to playing", StateReconnecting, evReconnected, StatePlaying, StatePlaying, true},
		{"reconnected to paused", StateReconnecting, evReconnected, StatePaused, StatePaused, true},
		{"no pause while reconnecting", StateReconnecting, evPause, StatePlaying, StateReconnecting, false},
		{"end from playing", StatePlaying, evEnd, 0, StateEnded, true},
		{"end from connecting", StateConnecting, evEnd, 0, StateEnded, true},
		{"ended is final", StateEnded, evPlaying, 0, StateEnded, false},
		{"end twice", StateEnded, evEnd, 0, StateEnded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := next(tt.from, tt.ev, tt.prev)
			if got != tt.want || ok != tt.ok {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestTeardownIsIdempotent(t *testing.T) {
	calls := 0
	s := newSession(context.Background(), guild, Track{Title: "x"}, func(*Session, EndReason) { calls++ })
	link := &fakeLink{guildID: guild, events: make(chan LinkEvent, 1)}
	drv := &fakeDriver{events: make(chan DriverEvent, 4)}
	s.attach(link, drv)
	s.fire(evPlaying)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.teardown(EndStopped)
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected 1 teardown callback, got %d", calls)
	}
	if _, disc := link.counts(); disc != 1 {
		t.Errorf("expected 1 disconnect, got %d", disc)
	}
	if drv.stops() != 1 {
		t.Errorf("expected 1 stop, got %d", drv.stops())
	}
	if s.Live() {
		t.Error("expected session to be ended")
	}
	if err := s.pause(); !errors.Is(err, errEnded) {
		t.Errorf("expected errEnded, got %v", err)
	}
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()

	unlockA := k.Lock("a")
	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock("a")
		close(acquired)
		unlock()
	}()

	// Another key is never blocked by "a".
	unlockB := k.Lock("b")
	unlockB()

	select {
	case <-acquired:
		t.Fatal("second lock on the same key must wait")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock was never acquired")
	}

	eventually(t, "entries released", func() bool { return k.size() == 0 })
}

func TestTotalPages(t *testing.T) {
	for count, want := range map[int]int{0: 1, 1: 1, 10: 1, 11: 2, 23: 3, 30: 3, 31: 4} {
		if got := TotalPages(count); got != want {
			t.Errorf("TotalPages(%d): expected %d, got %d", count, want, got)
		}
	}
}
