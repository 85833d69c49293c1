package ytdlp

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/keshon/ilpo/internal/music/parsers"
)

func ytdlpPipe(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	info, err := inspect(track.URL)
	if err != nil {
		return nil, nil, err
	}
	info.apply(track)

	ytdlp := exec.Command("yt-dlp", "-o", "-", "--no-playlist", "-f", "bestaudio", track.URL)
	ffmpeg := exec.Command("ffmpeg", parsers.FFmpegArgs("pipe:0", seekSec)...)

	ffmpegIn, err := ytdlp.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("yt-dlp stdout pipe error: %w", err)
	}
	ffmpeg.Stdin = ffmpegIn

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}

	if err := ytdlp.Start(); err != nil {
		return nil, nil, fmt.Errorf("yt-dlp start error: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		_ = ytdlp.Process.Kill()
		_ = ytdlp.Wait()
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		_ = ffmpeg.Process.Kill()
		_ = ytdlp.Process.Kill()
		_ = ffmpeg.Wait()
		_ = ytdlp.Wait()
	}

	return reader, cleanup, nil
}
