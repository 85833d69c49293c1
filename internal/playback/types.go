package playback

import (
	"context"
	"errors"
	"time"
)

// ResultCode identifies the outcome of a coordinator operation. The
// message catalog renders it for users.
type ResultCode string

const (
	CodeNoContent            ResultCode = "no_content"
	CodeNotInVoice           ResultCode = "not_in_voice"
	CodeDirectStarted        ResultCode = "direct_started"
	CodeTrackQueued          ResultCode = "track_queued"
	CodeTracksQueued         ResultCode = "tracks_queued"
	CodePlayFailed           ResultCode = "play_failed"
	CodePlayFailedDirect     ResultCode = "play_failed_direct"
	CodePlayFailedTimeout    ResultCode = "play_failed_timeout"
	CodePlayFailedPermission ResultCode = "play_failed_permission"
	CodeDirectActive         ResultCode = "direct_active"
	CodeNothingPlaying       ResultCode = "nothing_playing"
	CodeStopped              ResultCode = "stopped"
	CodeStoppedDirect        ResultCode = "stopped_direct"
	CodePaused               ResultCode = "paused"
	CodeAlreadyPaused        ResultCode = "already_paused"
	CodeResumed              ResultCode = "resumed"
	CodeNotPaused            ResultCode = "not_paused"
	CodeSkipped              ResultCode = "skipped"
	CodeVolumeUnsupported    ResultCode = "volume_unsupported"
	CodeVolumeCurrent        ResultCode = "volume_current"
	CodeVolumeRange          ResultCode = "volume_range"
	CodeVolumeSet            ResultCode = "volume_set"
	CodeInvalidPage          ResultCode = "invalid_page"
	CodeReconnecting         ResultCode = "reconnecting"
)

var (
	// ErrDialTimeout is returned by dialers when the voice handshake did
	// not finish in time.
	ErrDialTimeout = errors.New("voice connection timed out")
	// ErrPermission is returned by dialers when the bot may not join or
	// speak in the channel.
	ErrPermission = errors.New("missing voice permission")
	// ErrPlayingTimeout means the driver never reported Playing.
	ErrPlayingTimeout = errors.New("audio driver did not start playing")
)

// Requester identifies the user behind a request.
type Requester struct {
	ID   string
	Name string
}

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	URL         string
}

// Request is a play request coming from a slash command or a prefix
// command.
type Request struct {
	GuildID        string
	VoiceChannelID string
	TextChannelID  string
	Query          string
	RequestedBy    Requester
	Attachments    []Attachment
	// Referenced loads the attachments of the replied-to message. Nil when
	// the request is not a reply.
	Referenced func(ctx context.Context) ([]Attachment, error)
}

// Track is the single item of a direct audio session.
type Track struct {
	Title       string
	SourceURL   string
	RequestedBy Requester
}

// Result is returned by every coordinator operation. Err carries the
// operator-facing detail and is never rendered to users.
type Result struct {
	Success bool
	Code    ResultCode
	Params  map[string]string
	Track   *Track
	Err     error
}

func ok(code ResultCode, params map[string]string) Result {
	return Result{Success: true, Code: code, Params: params}
}

func fail(code ResultCode, err error, params map[string]string) Result {
	return Result{Code: code, Params: params, Err: err}
}

// QueueTrack is a track as seen through the queue backend.
type QueueTrack struct {
	Title       string
	Author      string
	URL         string
	Thumbnail   string
	Duration    time.Duration
	RequestedBy string
}

// Queue is the per-guild handle of the queue backend. Tracks returns the
// upcoming tracks only, the current one is reported by Current.
type Queue interface {
	Current() (QueueTrack, bool)
	Tracks() []QueueTrack
	IsPaused() bool
	Volume() int
	Position() time.Duration
	Pause() error
	Resume() error
	Skip() (QueueTrack, error)
	SetVolume(level int) error
	Delete()
}

// EnqueueRequest is what the coordinator hands to the queue backend.
type EnqueueRequest struct {
	GuildID        string
	VoiceChannelID string
	TextChannelID  string
	Query          string
	RequestedBy    Requester
}

// Resolution is a resolved query that is not in any queue yet. Playlists
// resolve to several tracks.
type Resolution interface {
	Tracks() []QueueTrack
}

// QueueBackend resolves queries and owns the per-guild queues. Resolve may
// take network round trips and is called without the guild lock; Append
// must return promptly.
type QueueBackend interface {
	Resolve(ctx context.Context, req EnqueueRequest) (Resolution, error)
	Append(req EnqueueRequest, res Resolution) error
	Queue(guildID string) (Queue, bool)
}

// LinkEvent is reported by a voice link.
type LinkEvent int

const (
	LinkReady LinkEvent = iota
	LinkDisconnected
	LinkDestroyed
)

func (e LinkEvent) String() string {
	switch e {
	case LinkReady:
		return "ready"
	case LinkDisconnected:
		return "disconnected"
	case LinkDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// VoiceLink is one voice connection.
type VoiceLink interface {
	GuildID() string
	ChannelID() string
	Events() <-chan LinkEvent
	Reconnect(ctx context.Context) error
	Disconnect() error
}

// DriverStatus is reported by an audio driver.
type DriverStatus int

const (
	DriverPlaying DriverStatus = iota
	DriverIdle
	DriverError
)

func (s DriverStatus) String() string {
	switch s {
	case DriverPlaying:
		return "playing"
	case DriverIdle:
		return "idle"
	case DriverError:
		return "error"
	}
	return "unknown"
}

// DriverEvent carries a driver status change.
type DriverEvent struct {
	Status DriverStatus
	Err    error
}

// AudioDriver streams one resource into the link it was created for.
type AudioDriver interface {
	Play(url string) error
	Pause() error
	Unpause() error
	Stop()
	Events() <-chan DriverEvent
}

// VoiceDialer opens voice links and creates drivers bound to them.
type VoiceDialer interface {
	Dial(ctx context.Context, guildID, channelID string) (VoiceLink, error)
	NewDriver(link VoiceLink) (AudioDriver, error)
}
