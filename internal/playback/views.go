package playback

import (
	"strconv"
	"time"
)

// PageSize is the number of upcoming tracks per queue page.
const PageSize = 10

// TrackView is one rendered row.
type TrackView struct {
	Title       string
	Author      string
	URL         string
	Thumbnail   string
	Duration    time.Duration
	RequestedBy string
	// Live is set when the duration is unknown.
	Live bool
}

// QueueView is a page of the guild's queue.
type QueueView struct {
	Direct     bool
	Current    *TrackView
	Upcoming   []TrackView
	Offset     int // index of Upcoming[0] in the whole queue
	Page       int
	TotalPages int
	Count      int
	Total      time.Duration
}

// NowPlayingView describes the audible track.
type NowPlayingView struct {
	Direct          bool
	Track           TrackView
	Position        time.Duration
	Volume          int
	VolumeSupported bool
	Paused          bool
	Reconnecting    bool
}

// TotalPages returns the number of pages for count items, at least 1.
func TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + PageSize - 1) / PageSize
}

func queueTrackView(t QueueTrack) TrackView {
	return TrackView{
		Title:       t.Title,
		Author:      t.Author,
		URL:         t.URL,
		Thumbnail:   t.Thumbnail,
		Duration:    t.Duration,
		RequestedBy: t.RequestedBy,
		Live:        t.Duration <= 0,
	}
}

func directTrackView(t Track) TrackView {
	return TrackView{
		Title:       t.Title,
		URL:         t.SourceURL,
		RequestedBy: t.RequestedBy.Name,
		Live:        true,
	}
}

// QueueView returns the 1-based page of the guild's queue.
func (c *Coordinator) QueueView(guildID string, page int) (QueueView, Result) {
	unlock := c.locks.Lock(guildID)
	defer unlock()

	act := c.Activity(guildID)
	switch act.Kind {
	case Direct:
		cur := directTrackView(act.Session.Track())
		return QueueView{Direct: true, Current: &cur, Page: 1, TotalPages: 1}, ok("", nil)
	case Queued:
	default:
		return QueueView{}, fail(CodeNothingPlaying, nil, nil)
	}

	tracks := act.Queue.Tracks()
	pages := TotalPages(len(tracks))
	if page < 1 || page-1 >= pages {
		return QueueView{}, fail(CodeInvalidPage, nil, map[string]string{"pages": strconv.Itoa(pages)})
	}

	view := QueueView{
		Page:       page,
		TotalPages: pages,
		Count:      len(tracks),
	}
	if cur, playing := act.Queue.Current(); playing {
		cv := queueTrackView(cur)
		view.Current = &cv
		view.Total += cur.Duration
	}
	for _, t := range tracks {
		view.Total += t.Duration
	}

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(tracks))
	view.Offset = start
	for _, t := range tracks[start:end] {
		view.Upcoming = append(view.Upcoming, queueTrackView(t))
	}
	return view, ok("", nil)
}

// NowPlayingView describes what is audible in the guild.
func (c *Coordinator) NowPlayingView(guildID string) (NowPlayingView, Result) {
	unlock := c.locks.Lock(guildID)
	defer unlock()

	act := c.Activity(guildID)
	switch act.Kind {
	case Direct:
		st := act.Session.State()
		return NowPlayingView{
			Direct:       true,
			Track:        directTrackView(act.Session.Track()),
			Paused:       st == StatePaused,
			Reconnecting: st == StateReconnecting,
		}, ok("", nil)
	case Queued:
		cur, playing := act.Queue.Current()
		if !playing {
			return NowPlayingView{}, fail(CodeNothingPlaying, nil, nil)
		}
		return NowPlayingView{
			Track:           queueTrackView(cur),
			Position:        act.Queue.Position(),
			Volume:          act.Queue.Volume(),
			VolumeSupported: true,
			Paused:          act.Queue.IsPaused(),
		}, ok("", nil)
	}
	return NowPlayingView{}, fail(CodeNothingPlaying, nil, nil)
}
