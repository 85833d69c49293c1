// Package playback decides per guild whether audio goes through the queue
// backend or straight to a voice link, and keeps both paths mutually
// exclusive.
package playback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Options tunes the direct audio path.
type Options struct {
	ConnectTimeout    time.Duration
	PlayingTimeout    time.Duration
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	// OnSessionEnd is called after a direct session was torn down.
	OnSessionEnd func(guildID string, track Track, reason EndReason)
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:    10 * time.Second,
		PlayingTimeout:    8 * time.Second,
		ReconnectAttempts: 3,
		ReconnectDelay:    time.Second,
	}
}

// ActivityKind tells which backend owns a guild's audio.
type ActivityKind int

const (
	Idle ActivityKind = iota
	Queued
	Direct
)

func (k ActivityKind) String() string {
	switch k {
	case Queued:
		return "queued"
	case Direct:
		return "direct"
	}
	return "idle"
}

// Activity is the per guild playback state. Exactly one of Queue and
// Session is set unless Kind is Idle.
type Activity struct {
	Kind    ActivityKind
	Queue   Queue
	Session *Session
}

// Coordinator is the single authority over what plays in a guild.
type Coordinator struct {
	queue  QueueBackend
	dialer VoiceDialer
	opts   Options

	locks *keyedMutex

	mu       sync.Mutex
	sessions map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a coordinator. Zero option values fall back to
// DefaultOptions.
func New(queue QueueBackend, dialer VoiceDialer, opts Options) *Coordinator {
	def := DefaultOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.PlayingTimeout <= 0 {
		opts.PlayingTimeout = def.PlayingTimeout
	}
	if opts.ReconnectAttempts < 0 {
		opts.ReconnectAttempts = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		queue:    queue,
		dialer:   dialer,
		opts:     opts,
		locks:    newKeyedMutex(),
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Activity reports what currently plays in the guild.
func (c *Coordinator) Activity(guildID string) Activity {
	if s := c.session(guildID); s != nil {
		return Activity{Kind: Direct, Session: s}
	}
	if q, ok := c.activeQueue(guildID); ok {
		return Activity{Kind: Queued, Queue: q}
	}
	return Activity{Kind: Idle}
}

func (c *Coordinator) session(guildID string) *Session {
	c.mu.Lock()
	s, ok := c.sessions[guildID]
	c.mu.Unlock()
	if !ok || s.GuildID() != guildID || !s.Live() {
		return nil
	}
	return s
}

func (c *Coordinator) storeSession(s *Session) {
	c.mu.Lock()
	c.sessions[s.GuildID()] = s
	c.mu.Unlock()
}

// forget runs once per session after teardown.
func (c *Coordinator) forget(s *Session, reason EndReason) {
	c.mu.Lock()
	if cur, ok := c.sessions[s.GuildID()]; ok && cur == s {
		delete(c.sessions, s.GuildID())
	}
	c.mu.Unlock()

	if c.opts.OnSessionEnd != nil && reason != EndStartFailed {
		c.opts.OnSessionEnd(s.GuildID(), s.Track(), reason)
	}
}

func (c *Coordinator) activeQueue(guildID string) (Queue, bool) {
	if c.queue == nil {
		return nil, false
	}
	q, ok := c.queue.Queue(guildID)
	if !ok || q == nil {
		return nil, false
	}
	if _, playing := q.Current(); playing {
		return q, true
	}
	if len(q.Tracks()) > 0 {
		return q, true
	}
	return nil, false
}

// Play classifies req and starts it on the matching path. Queries are
// resolved before the guild lock is taken, so a slow lookup does not hold
// up other commands of the guild.
func (c *Coordinator) Play(ctx context.Context, req Request) Result {
	if req.VoiceChannelID == "" {
		return fail(CodeNotInVoice, nil, nil)
	}

	cl, res := c.Classify(ctx, req)
	if !res.Success {
		return res
	}

	if cl.Kind == KindDirect {
		unlock := c.locks.Lock(req.GuildID)
		defer unlock()
		return c.playDirect(ctx, req, cl)
	}
	return c.playQueued(ctx, req, cl)
}

func (c *Coordinator) playQueued(ctx context.Context, req Request, cl Classification) Result {
	if s := c.session(req.GuildID); s != nil {
		return fail(CodeDirectActive, nil, map[string]string{"title": s.Track().Title})
	}

	enq := EnqueueRequest{
		GuildID:        req.GuildID,
		VoiceChannelID: req.VoiceChannelID,
		TextChannelID:  req.TextChannelID,
		Query:          cl.Query,
		RequestedBy:    req.RequestedBy,
	}
	resolved, err := c.queue.Resolve(ctx, enq)
	if err == nil && len(resolved.Tracks()) == 0 {
		err = errors.New("query resolved to no tracks")
	}
	if err != nil {
		log.Error().Err(err).Str("guild", req.GuildID).Str("query", cl.Query).Msg("[Playback] Resolve failed")
		return fail(CodePlayFailed, err, nil)
	}
	tracks := resolved.Tracks()

	unlock := c.locks.Lock(req.GuildID)
	defer unlock()

	// A direct play may have started while the query was resolving.
	if s := c.session(req.GuildID); s != nil {
		return fail(CodeDirectActive, nil, map[string]string{"title": s.Track().Title})
	}
	if err := c.queue.Append(enq, resolved); err != nil {
		log.Error().Err(err).Str("guild", req.GuildID).Str("query", cl.Query).Msg("[Playback] Enqueue failed")
		return fail(CodePlayFailed, err, nil)
	}

	first := tracks[0].Title
	log.Info().Str("guild", req.GuildID).Str("track", first).Int("tracks", len(tracks)).Msg("[Playback] Queued")
	if len(tracks) > 1 {
		return ok(CodeTracksQueued, map[string]string{"title": first, "count": strconv.Itoa(len(tracks))})
	}
	return ok(CodeTrackQueued, map[string]string{"title": first})
}

func (c *Coordinator) playDirect(ctx context.Context, req Request, cl Classification) Result {
	guildID := req.GuildID

	if c.queue != nil {
		if q, ok := c.queue.Queue(guildID); ok && q != nil {
			q.Delete()
		}
	}
	if old := c.session(guildID); old != nil {
		old.teardown(EndReplaced)
	}

	track := Track{Title: cl.Filename, SourceURL: cl.URL, RequestedBy: req.RequestedBy}
	s := newSession(c.ctx, guildID, track, c.forget)

	if err := c.startSession(ctx, s, req.VoiceChannelID); err != nil {
		s.teardown(EndStartFailed)
		log.Error().Err(err).Str("guild", guildID).Str("channel", req.VoiceChannelID).Str("track", track.Title).
			Msg("[Playback] Direct playback failed")
		return fail(failureCode(err), err, map[string]string{"title": track.Title})
	}

	c.storeSession(s)
	go s.watch(reconnectPolicy{attempts: c.opts.ReconnectAttempts, delay: c.opts.ReconnectDelay})

	log.Info().Str("guild", guildID).Str("track", track.Title).Msg("[Playback] Direct playback started")
	res := ok(CodeDirectStarted, map[string]string{"title": track.Title})
	res.Track = &track
	return res
}

// startSession dials, builds the driver and waits for Playing. On error the
// caller tears s down, which releases whatever was attached.
func (c *Coordinator) startSession(ctx context.Context, s *Session, channelID string) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	link, err := c.dialer.Dial(dialCtx, s.GuildID(), channelID)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrDialTimeout) {
			err = fmt.Errorf("%w: %w", ErrDialTimeout, err)
		}
		return fmt.Errorf("dial voice channel: %w", err)
	}
	if link.GuildID() != s.GuildID() {
		_ = link.Disconnect()
		return fmt.Errorf("dialer returned a link for guild %s", link.GuildID())
	}

	driver, err := c.dialer.NewDriver(link)
	if err != nil {
		s.attach(link, nil)
		return fmt.Errorf("create audio driver: %w", err)
	}
	s.attach(link, driver)

	if err := driver.Play(s.Track().SourceURL); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	timer := time.NewTimer(c.opts.PlayingTimeout)
	defer timer.Stop()
	for {
		select {
		case ev, open := <-driver.Events():
			if !open {
				return errors.New("audio driver closed before playing")
			}
			switch ev.Status {
			case DriverPlaying:
				if !s.fire(evPlaying) {
					return errEnded
				}
				return nil
			case DriverError:
				return fmt.Errorf("audio driver: %w", ev.Err)
			case DriverIdle:
				return errors.New("audio driver went idle before playing")
			}
		case <-timer.C:
			return ErrPlayingTimeout
		case <-s.Done():
			return errEnded
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func failureCode(err error) ResultCode {
	switch {
	case errors.Is(err, ErrPermission):
		return CodePlayFailedPermission
	case errors.Is(err, ErrDialTimeout), errors.Is(err, ErrPlayingTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodePlayFailedTimeout
	}
	return CodePlayFailedDirect
}

// Stop ends whatever plays in the guild.
func (c *Coordinator) Stop(guildID string) Result {
	unlock := c.locks.Lock(guildID)
	defer unlock()

	act := c.Activity(guildID)
	switch act.Kind {
	case Direct:
		title := act.Session.Track().Title
		act.Session.teardown(EndStopped)
		return ok(CodeStoppedDirect, map[string]string{"title": title})
	case Queued:
		if _, playing := act.Queue.Current(); !playing {
			return fail(CodeNothingPlaying, nil, nil)
		}
		act.Queue.Delete()
		return ok(CodeStopped, nil)
	}
	return fail(CodeNothingPlaying, nil, nil)
}

// Pause pauses the active backend.
func (c *Coordinator) Pause(guildID string) Result {
	unlock := c.locks.Lock(guildID)
	defer unlock()

	act := c.Activity(guildID)
	switch act.Kind {
	case Direct:
		return sessionResult(act.Session.pause(), CodePaused)
	case Queued:
		if _, playing := act.Queue.Current(); !playing {
			return fail(CodeNothingPlaying, nil, nil)
		}
		if act.Queue.IsPaused() {
			return fail(CodeAlreadyPaused, nil, nil)
		}
		if err := act.Queue.Pause(); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("[Playback] Queue pause failed")
			return fail(CodeAlreadyPaused, err, nil)
		}
		return ok(CodePaused, nil)
	}
	return fail(CodeNothingPlaying, nil, nil)
}

// Resume resumes the active backend.
func (c *Coordinator) Resume(guildID string) Result {
	unlock := c.locks.Lock(guildID)
	defer unlock()

	act := c.Activity(guildID)
	switch act.Kind {
	case Direct:
		return sessionResult(act.Session.resume(), CodeResumed)
	case Queued:
		if _, playing := act.Queue.Current(); !playing {
			return fail(CodeNothingPlaying, nil, nil)
		}
		if !act.Queue.IsPaused() {
			return fail(CodeNotPaused, nil, nil)
		}
		if err := act.Queue.Resume(); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("[Playback] Queue resume failed")
			return fail(CodeNotPaused, err, nil)
		}
		return ok(CodeResumed, nil)
	}
	return fail(CodeNothingPlaying, nil, nil)
}

func sessionResult(err error, success ResultCode) Result {
	switch {
	case err == nil:
		return ok(success, nil)
	case errors.Is(err, errAlreadyPaused):
		return fail(CodeAlreadyPaused, err, nil)
	case errors.Is(err, errNotPaused):
		return fail(CodeNotPaused, err, nil)
	case errors.Is(err, errReconnecting):
		return fail(CodeReconnecting, err, nil)
	case errors.Is(err, errEnded):
		return fail(CodeNothingPlaying, err, nil)
	}
	return fail(CodePlayFailedDirect, err, nil)
}

// Skip advances the queue, or stops a direct session since it has nothing
// to advance to.
func (c *Coordinator) Skip(guildID string) Result {
	unlock := c.locks.Lock(guildID)
	defer unlock()

	act := c.Activity(guildID)
	switch act.Kind {
	case Direct:
		title := act.Session.Track().Title
		act.Session.teardown(EndSkipped)
		return ok(CodeSkipped, map[string]string{"title": title})
	case Queued:
		if _, playing := act.Queue.Current(); !playing {
			return fail(CodeNothingPlaying, nil, nil)
		}
		former, err := act.Queue.Skip()
		if err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("[Playback] Queue skip failed")
			return fail(CodeNothingPlaying, err, nil)
		}
		return ok(CodeSkipped, map[string]string{"title": former.Title})
	}
	return fail(CodeNothingPlaying, nil, nil)
}

// Volume reports the queue volume when level is nil and sets it otherwise.
func (c *Coordinator) Volume(guildID string, level *int) Result {
	unlock := c.locks.Lock(guildID)
	defer unlock()

	act := c.Activity(guildID)
	switch act.Kind {
	case Direct:
		return fail(CodeVolumeUnsupported, nil, nil)
	case Queued:
		if level == nil {
			return ok(CodeVolumeCurrent, map[string]string{"volume": strconv.Itoa(act.Queue.Volume())})
		}
		if *level < 0 || *level > 100 {
			return fail(CodeVolumeRange, nil, nil)
		}
		if err := act.Queue.SetVolume(*level); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Int("volume", *level).Msg("[Playback] Set volume failed")
			return fail(CodeVolumeRange, err, nil)
		}
		return ok(CodeVolumeSet, map[string]string{"volume": strconv.Itoa(*level)})
	}
	return fail(CodeNothingPlaying, nil, nil)
}

// Shutdown tears down every direct session.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	list := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		list = append(list, s)
	}
	c.mu.Unlock()

	for _, s := range list {
		s.teardown(EndShutdown)
	}
	c.cancel()
}
