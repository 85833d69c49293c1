package parsers

import (
	"fmt"
	"time"

	"github.com/keshon/ilpo/internal/music/sources"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

type TrackParse struct {
	URL                 string
	Title               string
	Artist              string
	Thumbnail           string
	Duration            time.Duration
	CurrentPlayDuration time.Duration
	CurrentParser       string
	SourceInfo          sources.TrackInfo
}

// FFmpegArgs builds the ffmpeg invocation that turns input into raw PCM on
// stdout. Network inputs get reconnect flags.
func FFmpegArgs(input string, seekSec float64) []string {
	args := make([]string, 0, 20)
	if seekSec > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", seekSec))
	}
	if input != "pipe:0" {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-i", input,
		"-vn",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}
