package ffmpeg

import (
	"errors"
	"io"

	"github.com/keshon/ilpo/internal/music/parsers"
)

// FFMPEGStreamer plays any URL ffmpeg can open: uploads, radio, plain files.
type FFMPEGStreamer struct{}

func (s *FFMPEGStreamer) GetLinkStream(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	return ffmpegLink(track.URL, seekSec)
}
func (s *FFMPEGStreamer) GetPipeStream(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	return nil, nil, errors.New("pipe streaming not supported for now")
}
func (s *FFMPEGStreamer) SupportsPipe() bool {
	return false
}
