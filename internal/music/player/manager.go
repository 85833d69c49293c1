package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/music/parsers"
	"github.com/keshon/ilpo/internal/music/parsers/kkdai"
	"github.com/keshon/ilpo/internal/music/sources"
	"github.com/keshon/ilpo/internal/music/stream"
)

const (
	DefaultVolume       = 100
	defaultJoinTimeout  = 10 * time.Second
	tracksHistoryLimit  = 12
	eventsBuffer        = 32
	enqueueRetryOnClose = 3
)

// Conn is a joined voice channel able to take opus frames.
type Conn interface {
	stream.OpusSink
	ChannelID() string
	Disconnect() error
}

type Connector interface {
	Join(ctx context.Context, guildID, channelID string) (Conn, error)
}

type Resolver interface {
	Resolve(ctx context.Context, input, selectedSource, selectedParser string) ([]sources.TrackInfo, error)
}

type Describer interface {
	Describe(ctx context.Context, url string) (kkdai.Metadata, error)
}

type VolumeStore interface {
	Volume(guildID string) (int, bool)
	SetVolume(guildID string, volume int) error
}

// Opener opens the PCM stream of a track.
type Opener func(track *parsers.TrackParse) (io.ReadCloser, error)

// RecoveryOpener opens tracks through a RecoveryStream over registry.
func RecoveryOpener(registry stream.Registry) Opener {
	return func(track *parsers.TrackParse) (io.ReadCloser, error) {
		rs := stream.NewRecoveryStream(registry, track)
		if err := rs.Open(0); err != nil {
			return nil, err
		}
		return rs, nil
	}
}

type Config struct {
	Connector   Connector
	Resolver    Resolver
	Describer   Describer
	Opener      Opener
	Store       VolumeStore
	JoinTimeout time.Duration
}

// EnqueueRequest is a query to add to the guild's queue.
type EnqueueRequest struct {
	GuildID         string
	VoiceChannelID  string
	TextChannelID   string
	Query           string
	RequestedByID   string
	RequestedByName string
}

// Manager owns one Player per guild.
type Manager struct {
	cfg Config

	mu      sync.Mutex
	players map[string]*Player
	events  chan Event
}

func NewManager(cfg Config) *Manager {
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = defaultJoinTimeout
	}
	return &Manager{
		cfg:     cfg,
		players: make(map[string]*Player),
		events:  make(chan Event, eventsBuffer),
	}
}

// Events delivers status changes of every player.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) Get(guildID string) (*Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[guildID]
	return p, ok
}

func (m *Manager) GetOrCreate(guildID string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[guildID]; ok {
		return p
	}

	volume := DefaultVolume
	if m.cfg.Store != nil {
		if v, ok := m.cfg.Store.Volume(guildID); ok {
			volume = v
		}
	}
	p := newPlayer(m, guildID, volume)
	m.players[guildID] = p
	log.Debug().Str("guild", guildID).Int("volume", volume).Msg("[Player] created")
	return p
}

// Delete stops the guild's player, clears its queue and leaves voice.
func (m *Manager) Delete(guildID string) {
	if p, ok := m.Get(guildID); ok {
		p.Delete()
	}
}

// LeaveEmpty is called when the bot was left alone in its voice channel.
func (m *Manager) LeaveEmpty(guildID string) {
	p, ok := m.Get(guildID)
	if !ok {
		return
	}
	textChannel := p.textChannel()
	p.Delete()
	m.emit(Event{GuildID: guildID, TextChannelID: textChannel, Status: StatusLeftEmpty})
}

// Shutdown deletes every player.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	list := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		list = append(list, p)
	}
	m.mu.Unlock()

	for _, p := range list {
		p.Delete()
	}
}

// Enqueue resolves the query and appends the result to the guild's queue,
// starting playback when the player is idle.
func (m *Manager) Enqueue(ctx context.Context, req EnqueueRequest) ([]Track, error) {
	tracks, err := m.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := m.Append(req, tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Append adds already resolved tracks to the guild's queue. It does no
// network work.
func (m *Manager) Append(req EnqueueRequest, tracks []Track) error {
	if len(tracks) == 0 {
		return ErrNoTracksInQueue
	}
	var err error
	for i := 0; i < enqueueRetryOnClose; i++ {
		p := m.GetOrCreate(req.GuildID)
		err = p.add(tracks, req.VoiceChannelID)
		if !errors.Is(err, ErrPlayerClosed) {
			return err
		}
		// The player finished between lookup and add; a fresh one follows.
		m.remove(p)
	}
	return err
}

// Resolve turns the query into queue tracks. Playlists yield several
// tracks; a single YouTube video is completed with its metadata.
func (m *Manager) Resolve(ctx context.Context, req EnqueueRequest) ([]Track, error) {
	infos, err := m.cfg.Resolver.Resolve(ctx, req.Query, "", "")
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", req.Query, err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("resolve %q: %w", req.Query, ErrNoTracksInQueue)
	}

	tracks := make([]Track, 0, len(infos))
	for _, info := range infos {
		track := Track{
			URL:           info.URL,
			Title:         info.Title,
			Author:        info.Author,
			Duration:      info.Duration,
			Source:        info.SourceName,
			RequestedByID: req.RequestedByID,
			RequestedBy:   req.RequestedByName,
			TextChannelID: req.TextChannelID,
			parsers:       info.AvailableParsers,
		}
		if track.Title == "" {
			track.Title = info.URL
		}
		tracks = append(tracks, track)
	}

	if len(tracks) == 1 && tracks[0].Source == sources.SourceYouTube && m.cfg.Describer != nil {
		t := &tracks[0]
		md, err := m.cfg.Describer.Describe(ctx, t.URL)
		if err != nil {
			log.Warn().Err(err).Str("url", t.URL).Msg("[Player] metadata lookup failed")
		} else {
			if md.Title != "" {
				t.Title = md.Title
			}
			t.Author = md.Author
			t.Duration = md.Duration
			t.Thumbnail = md.Thumbnail
		}
	}
	return tracks, nil
}

func (m *Manager) remove(p *Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.players[p.guildID] == p {
		delete(m.players, p.guildID)
	}
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		log.Warn().Str("guild", ev.GuildID).Str("status", string(ev.Status)).Msg("[Player] status event dropped (channel full)")
	}
}
