// /internal/music/stream/stream.go
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/music/parsers"
	"github.com/keshon/ilpo/internal/music/parsers/ffmpeg"
	"github.com/keshon/ilpo/internal/music/parsers/kkdai"
	"github.com/keshon/ilpo/internal/music/parsers/ytdlp"
)

// ParserFFmpegLink plays any ffmpeg-readable URL; the direct-audio path uses it.
const ParserFFmpegLink = "ffmpeg-link"

// Registry maps parser names to the streamer that implements them.
type Registry map[string]parsers.Streamer

func NewRegistry(kk *kkdai.KKDAIStreamer) Registry {
	yt := &ytdlp.YTDLPStreamer{}
	return Registry{
		"ytdlp-link":     yt,
		"ytdlp-pipe":     yt,
		"kkdai-link":     kk,
		"kkdai-pipe":     kk,
		ParserFFmpegLink: &ffmpeg.FFMPEGStreamer{},
	}
}

func isPipeMode(parser string) bool {
	return parser == "ytdlp-pipe" || parser == "kkdai-pipe"
}

type TrackStream struct {
	io.ReadCloser
	track  *parsers.TrackParse
	parser string
}

func (m *TrackStream) GetTrack() *parsers.TrackParse {
	return m.track
}

func (m *TrackStream) GetMode() string {
	return m.parser
}

// AutoOpenStream tries every parser of the track in order.
func (r Registry) AutoOpenStream(track *parsers.TrackParse) (*TrackStream, func(), error) {
	var errs []error
	for _, parser := range track.SourceInfo.AvailableParsers {
		s, cleanup, err := r.OpenStream(track, parser, 0)
		if err == nil {
			track.CurrentParser = parser
			return s, cleanup, nil
		}
		errs = append(errs, fmt.Errorf("parser %s: %w", parser, err))
		log.Warn().Err(err).Str("parser", parser).Str("track", track.Title).Msg("Parser failed, trying next")
	}
	if len(errs) == 0 {
		return nil, nil, fmt.Errorf("no parsers for track %s", track.URL)
	}
	return nil, nil, fmt.Errorf("all parsers failed for track %s: %w", track.URL, errors.Join(errs...))
}

func (r Registry) OpenStream(track *parsers.TrackParse, parser string, seekSec float64) (*TrackStream, func(), error) {
	streamer, ok := r[parser]
	if !ok || streamer == nil {
		return nil, nil, fmt.Errorf("streamer not found for parser: %v", parser)
	}

	var (
		rc      io.ReadCloser
		cleanup func()
		err     error
	)
	if isPipeMode(parser) && streamer.SupportsPipe() {
		rc, cleanup, err = streamer.GetPipeStream(track, seekSec)
	} else {
		rc, cleanup, err = streamer.GetLinkStream(track, seekSec)
	}
	if err != nil {
		return nil, nil, err
	}
	if cleanup == nil {
		cleanup = func() {}
	}

	return &TrackStream{ReadCloser: rc, track: track, parser: parser}, cleanup, nil
}
