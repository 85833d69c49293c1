package player

import "time"

type PlayerStatus string

const (
	StatusAdded     PlayerStatus = "Track(s) Added"
	StatusPlaying   PlayerStatus = "Playing"
	StatusPaused    PlayerStatus = "Playback Paused"
	StatusResumed   PlayerStatus = "Playback Resumed"
	StatusSkipped   PlayerStatus = "Track Skipped"
	StatusFinished  PlayerStatus = "Queue Finished"
	StatusStopped   PlayerStatus = "Playback Stopped"
	StatusLeftEmpty PlayerStatus = "Left Empty Channel"
	StatusError     PlayerStatus = "Error"
)

func (status PlayerStatus) StringEmoji() string {
	m := map[PlayerStatus]string{
		StatusAdded:     "🎶",
		StatusPlaying:   "▶️",
		StatusPaused:    "⏸",
		StatusResumed:   "▶️",
		StatusSkipped:   "⏭",
		StatusFinished:  "🏁",
		StatusStopped:   "⏹",
		StatusLeftEmpty: "👋",
		StatusError:     "❌",
	}
	return m[status]
}

// Event is what a player reports to the outside world.
type Event struct {
	GuildID       string
	TextChannelID string
	Status        PlayerStatus
	Track         *Track
	// Count is the number of tracks a StatusAdded event covers.
	Count int
	Err   error
}

// Track is one queue entry.
type Track struct {
	URL           string
	Title         string
	Author        string
	Thumbnail     string
	Duration      time.Duration
	Source        string
	RequestedByID string
	RequestedBy   string
	TextChannelID string

	parsers []string
}
