package ytdlp

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/keshon/ilpo/internal/music/parsers"
)

func ytdlpLink(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	info, err := inspect(track.URL)
	if err != nil {
		return nil, nil, err
	}
	if info.URL == "" {
		return nil, nil, errors.New("empty URL returned from yt-dlp")
	}
	info.apply(track)

	ffmpeg := exec.Command("ffmpeg", parsers.FFmpegArgs(info.URL, seekSec)...)

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		_ = ffmpeg.Process.Kill()
		_ = ffmpeg.Wait()
	}

	return reader, cleanup, nil
}
