package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/ilpo/internal/music/player"
	"github.com/keshon/ilpo/internal/playback"
)

// queueBackend exposes the player manager to the playback coordinator.
type queueBackend struct {
	m *player.Manager
}

// NewQueueBackend adapts m to playback.QueueBackend.
func NewQueueBackend(m *player.Manager) playback.QueueBackend {
	return &queueBackend{m: m}
}

// resolved keeps the player tracks, including their parser lists, between
// Resolve and Append.
type resolved []player.Track

func (r resolved) Tracks() []playback.QueueTrack {
	out := make([]playback.QueueTrack, len(r))
	for i, t := range r {
		out[i] = queueTrack(t)
	}
	return out
}

func playerRequest(req playback.EnqueueRequest) player.EnqueueRequest {
	return player.EnqueueRequest{
		GuildID:         req.GuildID,
		VoiceChannelID:  req.VoiceChannelID,
		TextChannelID:   req.TextChannelID,
		Query:           req.Query,
		RequestedByID:   req.RequestedBy.ID,
		RequestedByName: req.RequestedBy.Name,
	}
}

func (q *queueBackend) Resolve(ctx context.Context, req playback.EnqueueRequest) (playback.Resolution, error) {
	tracks, err := q.m.Resolve(ctx, playerRequest(req))
	if err != nil {
		return nil, err
	}
	return resolved(tracks), nil
}

func (q *queueBackend) Append(req playback.EnqueueRequest, res playback.Resolution) error {
	tracks, ok := res.(resolved)
	if !ok {
		return fmt.Errorf("unexpected resolution %T", res)
	}
	return q.m.Append(playerRequest(req), tracks)
}

func (q *queueBackend) Queue(guildID string) (playback.Queue, bool) {
	p, ok := q.m.Get(guildID)
	if !ok {
		return nil, false
	}
	return &playerQueue{p: p}, true
}

func queueTrack(t player.Track) playback.QueueTrack {
	return playback.QueueTrack{
		Title:       t.Title,
		Author:      t.Author,
		URL:         t.URL,
		Thumbnail:   t.Thumbnail,
		Duration:    t.Duration,
		RequestedBy: t.RequestedBy,
	}
}

type playerQueue struct {
	p *player.Player
}

func (q *playerQueue) Current() (playback.QueueTrack, bool) {
	t, ok := q.p.Current()
	if !ok {
		return playback.QueueTrack{}, false
	}
	return queueTrack(t), true
}

func (q *playerQueue) Tracks() []playback.QueueTrack {
	list := q.p.Tracks()
	out := make([]playback.QueueTrack, 0, len(list))
	for _, t := range list {
		out = append(out, queueTrack(t))
	}
	return out
}

func (q *playerQueue) Skip() (playback.QueueTrack, error) {
	t, err := q.p.Skip()
	if err != nil {
		return playback.QueueTrack{}, err
	}
	return queueTrack(t), nil
}

func (q *playerQueue) IsPaused() bool            { return q.p.IsPaused() }
func (q *playerQueue) Volume() int               { return q.p.Volume() }
func (q *playerQueue) Position() time.Duration   { return q.p.Position() }
func (q *playerQueue) Pause() error              { return q.p.Pause() }
func (q *playerQueue) Resume() error             { return q.p.Resume() }
func (q *playerQueue) SetVolume(level int) error { return q.p.SetVolume(level) }
func (q *playerQueue) Delete()                   { q.p.Delete() }
