package parsers

import "io"

// Streamer opens a raw s16le 48 kHz stereo PCM stream for a track.
type Streamer interface {
	GetLinkStream(track *TrackParse, seekSec float64) (io.ReadCloser, func(), error)
	GetPipeStream(track *TrackParse, seekSec float64) (io.ReadCloser, func(), error)
	SupportsPipe() bool
}
