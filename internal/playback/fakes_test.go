package playback

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeQueue struct {
	mu      sync.Mutex
	current *QueueTrack
	tracks  []QueueTrack
	paused  bool
	volume  int
	pos     time.Duration
	deleted int
}

func (q *fakeQueue) Current() (QueueTrack, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return QueueTrack{}, false
	}
	return *q.current, true
}

func (q *fakeQueue) Tracks() []QueueTrack {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]QueueTrack(nil), q.tracks...)
}

func (q *fakeQueue) IsPaused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

func (q *fakeQueue) Volume() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.volume
}

func (q *fakeQueue) Position() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pos
}

func (q *fakeQueue) Pause() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.paused {
		return errors.New("already paused")
	}
	q.paused = true
	return nil
}

func (q *fakeQueue) Resume() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.paused {
		return errors.New("not paused")
	}
	q.paused = false
	return nil
}

func (q *fakeQueue) Skip() (QueueTrack, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return QueueTrack{}, errors.New("no track")
	}
	former := *q.current
	q.current = nil
	if len(q.tracks) > 0 {
		next := q.tracks[0]
		q.tracks = q.tracks[1:]
		q.current = &next
	}
	return former, nil
}

func (q *fakeQueue) SetVolume(level int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.volume = level
	return nil
}

func (q *fakeQueue) Delete() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = nil
	q.tracks = nil
	q.paused = false
	q.deleted++
}

func (q *fakeQueue) deletes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.deleted
}

type fakeBackend struct {
	mu       sync.Mutex
	queues   map[string]*fakeQueue
	err      error
	requests []EnqueueRequest
	// gate, when set, blocks Resolve until it is closed.
	gate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{queues: make(map[string]*fakeQueue)}
}

type fakeResolution []QueueTrack

func (r fakeResolution) Tracks() []QueueTrack { return r }

// Resolve turns "playlist ..." queries into three tracks and anything else
// into one.
func (b *fakeBackend) Resolve(ctx context.Context, req EnqueueRequest) (Resolution, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	gate, err := b.gate, b.err
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	n := 1
	if strings.HasPrefix(req.Query, "playlist") {
		n = 3
	}
	res := make(fakeResolution, 0, n)
	for i := 0; i < n; i++ {
		title := "Resolved " + req.Query
		if n > 1 {
			title += " #" + strconv.Itoa(i+1)
		}
		res = append(res, QueueTrack{Title: title, Duration: 3 * time.Minute, RequestedBy: req.RequestedBy.Name})
	}
	return res, nil
}

func (b *fakeBackend) Append(req EnqueueRequest, res Resolution) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[req.GuildID]
	if !ok {
		q = &fakeQueue{volume: 100}
		b.queues[req.GuildID] = q
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range res.Tracks() {
		if q.current == nil {
			t := t
			q.current = &t
		} else {
			q.tracks = append(q.tracks, t)
		}
	}
	return nil
}

func (b *fakeBackend) Queue(guildID string) (Queue, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[guildID]
	if !ok {
		return nil, false
	}
	return q, true
}

func (b *fakeBackend) enqueued() []EnqueueRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]EnqueueRequest(nil), b.requests...)
}

// withQueue seeds guildID with a playing track and n upcoming ones.
func (b *fakeBackend) withQueue(guildID string, n int) *fakeQueue {
	q := &fakeQueue{volume: 100, current: &QueueTrack{Title: "Current", Author: "Band", Duration: 4 * time.Minute}}
	for i := 0; i < n; i++ {
		q.tracks = append(q.tracks, QueueTrack{Title: "Track " + strconv.Itoa(i+1), Duration: time.Minute})
	}
	b.mu.Lock()
	b.queues[guildID] = q
	b.mu.Unlock()
	return q
}

type fakeLink struct {
	guildID   string
	channelID string
	events    chan LinkEvent

	mu             sync.Mutex
	reconnectErrs  []error
	reconnectCalls int
	disconnects    int
}

func (l *fakeLink) GuildID() string          { return l.guildID }
func (l *fakeLink) ChannelID() string        { return l.channelID }
func (l *fakeLink) Events() <-chan LinkEvent { return l.events }

func (l *fakeLink) Reconnect(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reconnectCalls++
	if len(l.reconnectErrs) == 0 {
		return nil
	}
	err := l.reconnectErrs[0]
	if len(l.reconnectErrs) > 1 {
		l.reconnectErrs = l.reconnectErrs[1:]
	}
	return err
}

func (l *fakeLink) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disconnects++
	return nil
}

func (l *fakeLink) counts() (reconnects, disconnects int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reconnectCalls, l.disconnects
}

type fakeDriver struct {
	events chan DriverEvent
	// onPlay is emitted when Play is called; nil emits nothing.
	onPlay *DriverEvent

	mu      sync.Mutex
	url     string
	paused  bool
	stopped int
}

func (d *fakeDriver) Play(url string) error {
	d.mu.Lock()
	d.url = url
	d.mu.Unlock()
	if d.onPlay != nil {
		d.events <- *d.onPlay
	}
	return nil
}

func (d *fakeDriver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
	return nil
}

func (d *fakeDriver) Unpause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
	return nil
}

func (d *fakeDriver) Stop() {
	d.mu.Lock()
	d.stopped++
	d.mu.Unlock()
	select {
	case d.events <- DriverEvent{Status: DriverIdle}:
	default:
	}
}

func (d *fakeDriver) Events() <-chan DriverEvent { return d.events }

func (d *fakeDriver) isPaused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

func (d *fakeDriver) stops() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

type fakeDialer struct {
	mu        sync.Mutex
	dialErr   error
	driverErr error
	// block makes Dial wait for its context.
	block bool
	// silent drivers never report a status after Play.
	silent        bool
	playErr       error
	reconnectErrs []error
	links         []*fakeLink
	drivers       []*fakeDriver
}

func (d *fakeDialer) Dial(ctx context.Context, guildID, channelID string) (VoiceLink, error) {
	d.mu.Lock()
	block, err := d.block, d.dialErr
	d.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	l := &fakeLink{
		guildID:       guildID,
		channelID:     channelID,
		events:        make(chan LinkEvent, 4),
		reconnectErrs: d.reconnectErrs,
	}
	d.mu.Lock()
	d.links = append(d.links, l)
	d.mu.Unlock()
	return l, nil
}

func (d *fakeDialer) NewDriver(VoiceLink) (AudioDriver, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.driverErr != nil {
		return nil, d.driverErr
	}
	drv := &fakeDriver{events: make(chan DriverEvent, 8)}
	switch {
	case d.playErr != nil:
		drv.onPlay = &DriverEvent{Status: DriverError, Err: d.playErr}
	case !d.silent:
		drv.onPlay = &DriverEvent{Status: DriverPlaying}
	}
	d.drivers = append(d.drivers, drv)
	return drv, nil
}

func (d *fakeDialer) allLinks() []*fakeLink {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeLink(nil), d.links...)
}

func (d *fakeDialer) lastDriver() *fakeDriver {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.drivers) == 0 {
		return nil
	}
	return d.drivers[len(d.drivers)-1]
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
