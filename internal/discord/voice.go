package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/music/parsers"
	"github.com/keshon/ilpo/internal/music/player"
	"github.com/keshon/ilpo/internal/music/sources"
	"github.com/keshon/ilpo/internal/music/stream"
	"github.com/keshon/ilpo/internal/playback"
)

const (
	readyPollInterval = 500 * time.Millisecond
	sendTimeout       = time.Second
	// A leave event this soon after a join belongs to the previous
	// connection of the guild.
	leaveGrace = 2 * time.Second
)

// Voice joins voice channels for both playback paths: it is the player's
// Connector and the coordinator's VoiceDialer.
type Voice struct {
	dg       *discordgo.Session
	registry stream.Registry

	mu    sync.Mutex
	links map[string]*voiceLink
}

func NewVoice(dg *discordgo.Session, registry stream.Registry) *Voice {
	return &Voice{dg: dg, registry: registry, links: make(map[string]*voiceLink)}
}

// Join implements player.Connector.
func (v *Voice) Join(ctx context.Context, guildID, channelID string) (player.Conn, error) {
	return v.open(ctx, guildID, channelID, false)
}

// Dial implements playback.VoiceDialer.
func (v *Voice) Dial(ctx context.Context, guildID, channelID string) (playback.VoiceLink, error) {
	return v.open(ctx, guildID, channelID, true)
}

func (v *Voice) open(ctx context.Context, guildID, channelID string, watch bool) (*voiceLink, error) {
	if err := v.checkPermissions(channelID); err != nil {
		return nil, err
	}
	vc, err := joinVoice(ctx, v.dg, guildID, channelID)
	if err != nil {
		return nil, err
	}

	l := &voiceLink{
		voice:     v,
		guildID:   guildID,
		channelID: channelID,
		vc:        vc,
		joinedAt:  time.Now(),
		stop:      make(chan struct{}),
		destroy:   make(chan struct{}),
	}
	if watch {
		l.events = make(chan playback.LinkEvent, 4)
		go l.watch()
	}

	v.mu.Lock()
	v.links[guildID] = l
	v.mu.Unlock()

	log.Info().Str("guild", guildID).Str("channel", channelID).Bool("direct", watch).Msg("[Voice] joined")
	return l, nil
}

func (v *Voice) checkPermissions(channelID string) error {
	if v.dg.State == nil || v.dg.State.User == nil {
		return nil
	}
	perms, err := v.dg.State.UserChannelPermissions(v.dg.State.User.ID, channelID)
	if err != nil {
		// Unknown to the cache; let the gateway decide.
		return nil
	}
	return requirePermissions(perms, discordgo.PermissionVoiceConnect, discordgo.PermissionVoiceSpeak)
}

func requirePermissions(have int64, need ...int64) error {
	for _, p := range need {
		if have&p != p {
			return fmt.Errorf("%w: permission bit %d", playback.ErrPermission, p)
		}
	}
	return nil
}

// joinVoice bounds the blocking ChannelVoiceJoin by ctx. A connection that
// arrives after ctx is done is dropped.
func joinVoice(ctx context.Context, dg *discordgo.Session, guildID, channelID string) (*discordgo.VoiceConnection, error) {
	type result struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	ch := make(chan result, 1)
	go func() {
		vc, err := dg.ChannelVoiceJoin(guildID, channelID, false, true)
		ch <- result{vc, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("join voice channel %s: %w", channelID, r.err)
		}
		return r.vc, nil
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.vc != nil {
				_ = r.vc.Disconnect()
			}
		}()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, playback.ErrDialTimeout
		}
		return nil, ctx.Err()
	}
}

// Destroyed reports that the bot left guildID's voice channel without being
// asked to.
func (v *Voice) Destroyed(guildID string) bool {
	v.mu.Lock()
	l, ok := v.links[guildID]
	v.mu.Unlock()
	if !ok || l.sinceJoin() < leaveGrace {
		return false
	}
	l.markDestroyed()
	return true
}

// ChannelOf returns the voice channel the bot holds in guildID.
func (v *Voice) ChannelOf(guildID string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	l, ok := v.links[guildID]
	if !ok {
		return "", false
	}
	return l.channelID, true
}

func (v *Voice) forget(l *voiceLink) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.links[l.guildID] == l {
		delete(v.links, l.guildID)
	}
}

// NewDriver implements playback.VoiceDialer.
func (v *Voice) NewDriver(link playback.VoiceLink) (playback.AudioDriver, error) {
	l, ok := link.(*voiceLink)
	if !ok {
		return nil, fmt.Errorf("unsupported voice link %T", link)
	}
	return &driver{
		link:     l,
		registry: v.registry,
		ctl:      stream.NewControl(player.DefaultVolume),
		events:   make(chan playback.DriverEvent, 4),
	}, nil
}

type voiceLink struct {
	voice     *Voice
	guildID   string
	channelID string

	mu       sync.Mutex
	vc       *discordgo.VoiceConnection
	joinedAt time.Time

	events      chan playback.LinkEvent
	stop        chan struct{}
	stopOnce    sync.Once
	destroy     chan struct{}
	destroyOnce sync.Once
}

func (l *voiceLink) GuildID() string                   { return l.guildID }
func (l *voiceLink) ChannelID() string                 { return l.channelID }
func (l *voiceLink) Events() <-chan playback.LinkEvent { return l.events }

func (l *voiceLink) conn() *discordgo.VoiceConnection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.vc
}

func (l *voiceLink) sinceJoin() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Since(l.joinedAt)
}

func (l *voiceLink) ready() bool {
	vc := l.conn()
	if vc == nil {
		return false
	}
	vc.RLock()
	defer vc.RUnlock()
	return vc.Ready
}

func (l *voiceLink) markDestroyed() {
	l.destroyOnce.Do(func() { close(l.destroy) })
}

// watch is the only sender on events and closes it on exit.
func (l *voiceLink) watch() {
	defer close(l.events)
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	wasReady := true
	for {
		select {
		case <-l.stop:
			return
		case <-l.destroy:
			l.send(playback.LinkDestroyed)
			return
		case <-ticker.C:
			ready := l.ready()
			if ready == wasReady {
				continue
			}
			wasReady = ready
			if ready {
				l.send(playback.LinkReady)
			} else {
				log.Warn().Str("guild", l.guildID).Msg("[Voice] connection lost")
				l.send(playback.LinkDisconnected)
			}
		}
	}
}

func (l *voiceLink) send(ev playback.LinkEvent) {
	select {
	case l.events <- ev:
	case <-l.stop:
	}
}

// Reconnect rejoins the same channel.
func (l *voiceLink) Reconnect(ctx context.Context) error {
	if l.ready() {
		return nil
	}
	vc, err := joinVoice(ctx, l.voice.dg, l.guildID, l.channelID)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.vc = vc
	l.joinedAt = time.Now()
	l.mu.Unlock()
	log.Info().Str("guild", l.guildID).Str("channel", l.channelID).Msg("[Voice] reconnected")
	return nil
}

func (l *voiceLink) Disconnect() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stop)
		l.voice.forget(l)
		if vc := l.conn(); vc != nil {
			_ = vc.Speaking(false)
			err = vc.Disconnect()
		}
		log.Info().Str("guild", l.guildID).Msg("[Voice] disconnected")
	})
	return err
}

// SendOpus implements stream.OpusSink. Frames that cannot be delivered in
// time are dropped so a stalled connection does not stall the pump.
func (l *voiceLink) SendOpus(ctx context.Context, frame []byte) error {
	vc := l.conn()
	if vc == nil {
		return errors.New("voice connection closed")
	}
	timer := time.NewTimer(sendTimeout)
	defer timer.Stop()
	select {
	case vc.OpusSend <- frame:
		return nil
	case <-timer.C:
		return nil
	case <-l.stop:
		return errors.New("voice connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// driver plays one URL through ffmpeg into a link.
type driver struct {
	link     *voiceLink
	registry stream.Registry
	ctl      *stream.Control
	events   chan playback.DriverEvent

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (d *driver) Events() <-chan playback.DriverEvent { return d.events }

func (d *driver) emit(ev playback.DriverEvent) {
	select {
	case d.events <- ev:
	default:
	}
}

func (d *driver) Play(url string) error {
	track := &parsers.TrackParse{
		URL:           url,
		Title:         url,
		CurrentParser: stream.ParserFFmpegLink,
		SourceInfo: sources.TrackInfo{
			URL:              url,
			Title:            url,
			SourceName:       "direct",
			AvailableParsers: []string{stream.ParserFFmpegLink},
		},
	}
	ts, cleanup, err := d.registry.OpenStream(track, stream.ParserFFmpegLink, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	d.ctl.OnFirstFrame(func() {
		d.emit(playback.DriverEvent{Status: playback.DriverPlaying})
	})
	if vc := d.link.conn(); vc != nil {
		_ = vc.Speaking(true)
	}

	go func() {
		defer cleanup()
		defer ts.Close()
		stopClose := context.AfterFunc(ctx, func() { _ = ts.Close() })
		defer stopClose()

		err := stream.Pump(ctx, ts, d.link, d.ctl)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.emit(playback.DriverEvent{Status: playback.DriverError, Err: err})
			return
		}
		d.emit(playback.DriverEvent{Status: playback.DriverIdle})
	}()
	return nil
}

func (d *driver) Pause() error {
	d.ctl.Pause()
	return nil
}

func (d *driver) Unpause() error {
	d.ctl.Resume()
	return nil
}

func (d *driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
}
