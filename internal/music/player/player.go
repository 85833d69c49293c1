package player

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/music/parsers"
	"github.com/keshon/ilpo/internal/music/sources"
	"github.com/keshon/ilpo/internal/music/stream"
)

var (
	ErrNoTrackPlaying  = errors.New("no track is currently playing")
	ErrNoTracksInQueue = errors.New("no tracks in queue")
	ErrAlreadyPaused   = errors.New("playback is already paused")
	ErrNotPaused       = errors.New("playback is not paused")
	ErrVolumeRange     = errors.New("volume must be between 0 and 100")
	ErrPlayerClosed    = errors.New("player is closed")
)

// Player plays one guild's queue, one track at a time.
type Player struct {
	m       *Manager
	guildID string

	mu         sync.Mutex
	channelID  string
	textChanID string
	queue      []Track
	current    *Track
	history    []Track
	volume     int
	ctl        *stream.Control
	conn       Conn
	running    bool
	closed     bool
	stopLoop   context.CancelFunc
	skipTrack  context.CancelFunc
	loopDone   chan struct{}
}

func newPlayer(m *Manager, guildID string, volume int) *Player {
	return &Player{
		m:       m,
		guildID: guildID,
		volume:  volume,
		queue:   make([]Track, 0),
		history: make([]Track, 0),
	}
}

func (p *Player) GuildID() string { return p.guildID }

// add appends a resolved track and starts the playback loop if idle.
func (p *Player) add(tracks []Track, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	p.queue = append(p.queue, tracks...)
	p.channelID = channelID
	if tc := tracks[0].TextChannelID; tc != "" {
		p.textChanID = tc
	}
	log.Info().Str("guild", p.guildID).Str("track", tracks[0].Title).Int("added", len(tracks)).Int("queue", len(p.queue)).Msg("[Player] tracks added")

	// An idle player announces its first track as playing instead.
	if p.running || len(tracks) > 1 {
		t := tracks[0]
		p.m.emit(Event{GuildID: p.guildID, TextChannelID: p.textChanID, Status: StatusAdded, Track: &t, Count: len(tracks)})
	}
	if p.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.stopLoop = cancel
	p.loopDone = make(chan struct{})
	go p.run(ctx, p.loopDone)
	return nil
}

func (p *Player) run(ctx context.Context, done chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(done)
	}()
	for {
		track, trackCtx, ctl, ok := p.next(ctx)
		if !ok {
			return
		}

		err := p.playTrack(trackCtx, track, ctl)
		p.finishTrack(track)

		if err != nil {
			log.Error().Err(err).Str("guild", p.guildID).Str("track", track.Title).Msg("[Player] playback failed")
			p.m.emit(Event{GuildID: p.guildID, TextChannelID: track.TextChannelID, Status: StatusError, Track: &track, Err: err})
			if errors.Is(err, errVoice) {
				p.shutdown(false)
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// next pops the head of the queue. An empty queue closes the player.
func (p *Player) next(ctx context.Context) (Track, context.Context, *stream.Control, bool) {
	p.mu.Lock()
	if ctx.Err() != nil || p.closed {
		p.mu.Unlock()
		return Track{}, nil, nil, false
	}

	if len(p.queue) == 0 {
		p.closed = true
		conn, textChan := p.conn, p.textChanID
		p.conn = nil
		p.mu.Unlock()

		p.m.remove(p)
		if conn != nil {
			_ = conn.Disconnect()
		}
		log.Info().Str("guild", p.guildID).Msg("[Player] queue finished")
		p.m.emit(Event{GuildID: p.guildID, TextChannelID: textChan, Status: StatusFinished})
		return Track{}, nil, nil, false
	}

	track := p.queue[0]
	p.queue = p.queue[1:]
	p.current = &track
	p.ctl = stream.NewControl(p.volume)
	trackCtx, cancel := context.WithCancel(ctx)
	p.skipTrack = cancel
	ctl := p.ctl
	p.mu.Unlock()

	return track, trackCtx, ctl, true
}

var errVoice = errors.New("voice connection failed")

func (p *Player) playTrack(ctx context.Context, track Track, ctl *stream.Control) error {
	conn, err := p.ensureConn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %w", errVoice, err)
	}

	tp := &parsers.TrackParse{
		URL:           track.URL,
		Title:         track.Title,
		Artist:        track.Author,
		Duration:      track.Duration,
		CurrentParser: firstOr(track.parsers, ""),
		SourceInfo: sources.TrackInfo{
			URL:              track.URL,
			Title:            track.Title,
			SourceName:       track.Source,
			AvailableParsers: track.parsers,
		},
	}

	src, err := p.m.cfg.Opener(tp)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer src.Close()
	stopClose := context.AfterFunc(ctx, func() { _ = src.Close() })
	defer stopClose()

	if tp.Duration > 0 && track.Duration == 0 {
		p.mu.Lock()
		if p.current != nil && p.current.URL == track.URL {
			p.current.Duration = tp.Duration
		}
		p.mu.Unlock()
	}

	log.Info().Str("guild", p.guildID).Str("track", track.Title).Str("parser", tp.CurrentParser).Msg("[Player] now playing")
	p.m.emit(Event{GuildID: p.guildID, TextChannelID: track.TextChannelID, Status: StatusPlaying, Track: &track})

	return stream.Pump(ctx, src, conn, ctl)
}

func (p *Player) ensureConn(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	conn, channelID := p.conn, p.channelID
	p.mu.Unlock()

	if conn != nil && conn.ChannelID() == channelID {
		return conn, nil
	}
	if conn != nil {
		_ = conn.Disconnect()
	}

	joinCtx, cancel := context.WithTimeout(ctx, p.m.cfg.JoinTimeout)
	defer cancel()
	conn, err := p.m.cfg.Connector.Join(joinCtx, p.guildID, channelID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = conn.Disconnect()
		return nil, ErrPlayerClosed
	}
	p.conn = conn
	p.mu.Unlock()
	log.Info().Str("guild", p.guildID).Str("channel", channelID).Msg("[Player] joined voice channel")
	return conn, nil
}

func (p *Player) finishTrack(track Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.skipTrack != nil {
		p.skipTrack()
		p.skipTrack = nil
	}
	if p.current != nil {
		track = *p.current
	}
	p.current = nil
	p.ctl = nil
	p.history = append(p.history, track)
	if len(p.history) > tracksHistoryLimit {
		p.history = p.history[len(p.history)-tracksHistoryLimit:]
	}
}

// Skip ends the current track; the loop moves on to the next one.
func (p *Player) Skip() (Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.skipTrack == nil {
		return Track{}, ErrNoTrackPlaying
	}
	skipped := *p.current
	p.skipTrack()
	log.Info().Str("guild", p.guildID).Str("track", skipped.Title).Msg("[Player] skipped")
	return skipped, nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.ctl == nil {
		return ErrNoTrackPlaying
	}
	if !p.ctl.Pause() {
		return ErrAlreadyPaused
	}
	p.m.emit(Event{GuildID: p.guildID, TextChannelID: p.textChanID, Status: StatusPaused, Track: p.currentCopy()})
	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.ctl == nil {
		return ErrNoTrackPlaying
	}
	if !p.ctl.Resume() {
		return ErrNotPaused
	}
	p.m.emit(Event{GuildID: p.guildID, TextChannelID: p.textChanID, Status: StatusResumed, Track: p.currentCopy()})
	return nil
}

func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctl != nil && p.ctl.Paused()
}

func (p *Player) SetVolume(v int) error {
	if v < 0 || v > 100 {
		return ErrVolumeRange
	}
	p.mu.Lock()
	p.volume = v
	if p.ctl != nil {
		p.ctl.SetVolume(v)
	}
	p.mu.Unlock()

	if p.m.cfg.Store != nil {
		if err := p.m.cfg.Store.SetVolume(p.guildID, v); err != nil {
			log.Warn().Err(err).Str("guild", p.guildID).Msg("[Player] could not persist volume")
		}
	}
	return nil
}

func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Current returns the track being played, if any.
func (p *Player) Current() (Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Track{}, false
	}
	return *p.current, true
}

// Position is how far into the current track playback is.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctl == nil {
		return 0
	}
	return p.ctl.Position()
}

// Tracks returns the upcoming tracks, without the current one.
func (p *Player) Tracks() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.queue)
}

// History returns recently played tracks, oldest first.
func (p *Player) History() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.history)
}

// EstimatedDuration sums the known durations of current and upcoming tracks.
func (p *Player) EstimatedDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total time.Duration
	if p.current != nil {
		total += p.current.Duration
	}
	for _, t := range p.queue {
		total += t.Duration
	}
	return total
}

// Delete stops playback, clears the queue and leaves the voice channel.
// It blocks until the playback loop has exited.
func (p *Player) Delete() {
	p.shutdown(true)
}

func (p *Player) shutdown(wait bool) {
	p.mu.Lock()
	p.closed = true
	p.queue = nil
	if p.stopLoop != nil {
		p.stopLoop()
	}
	conn := p.conn
	p.conn = nil
	done := p.loopDone
	p.mu.Unlock()

	p.m.remove(p)
	if wait && done != nil {
		<-done
	}
	if conn != nil {
		if err := conn.Disconnect(); err != nil {
			log.Warn().Err(err).Str("guild", p.guildID).Msg("[Player] disconnect failed")
		}
	}
	log.Info().Str("guild", p.guildID).Msg("[Player] deleted")
}

func (p *Player) textChannel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textChanID
}

func (p *Player) currentCopy() *Track {
	if p.current == nil {
		return nil
	}
	t := *p.current
	return &t
}

func firstOr(list []string, def string) string {
	if len(list) == 0 {
		return def
	}
	return list[0]
}
