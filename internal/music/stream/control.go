package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const frameDuration = 20 * time.Millisecond

// Control is shared between a Pump and whoever steers it: pause, volume and
// the position derived from the number of frames sent.
type Control struct {
	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
	volume  int

	frames     atomic.Int64
	firstFrame func()
	firstOnce  sync.Once
}

// NewControl returns a Control at the given volume percentage.
func NewControl(volume int) *Control {
	return &Control{volume: clampVolume(volume)}
}

// Pause reports false when already paused.
func (c *Control) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return false
	}
	c.paused = true
	c.resumed = make(chan struct{})
	return true
}

// Resume reports false when not paused.
func (c *Control) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return false
	}
	c.paused = false
	close(c.resumed)
	return true
}

func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Control) SetVolume(v int) {
	c.mu.Lock()
	c.volume = clampVolume(v)
	c.mu.Unlock()
}

func (c *Control) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Position is the playback time sent so far, not counting a start offset.
func (c *Control) Position() time.Duration {
	return time.Duration(c.frames.Load()) * frameDuration
}

// OnFirstFrame registers fn to run once, after the first frame was sent.
// Must be called before the Pump starts.
func (c *Control) OnFirstFrame(fn func()) {
	c.firstFrame = fn
}

func (c *Control) frameSent() {
	c.frames.Add(1)
	c.firstOnce.Do(func() {
		if c.firstFrame != nil {
			c.firstFrame()
		}
	})
}

func (c *Control) gain() float64 {
	return float64(c.Volume()) / 100
}

// waitUnpaused blocks while paused.
func (c *Control) waitUnpaused(ctx context.Context) error {
	c.mu.Lock()
	if !c.paused {
		c.mu.Unlock()
		return nil
	}
	ch := c.resumed
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

func clampVolume(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
