package ffmpeg

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/keshon/ilpo/internal/music/parsers"
)

func ffmpegLink(url string, seekSec float64) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg", parsers.FFmpegArgs(url, seekSec)...)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	return reader, cleanup, nil
}
