package kkdai

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/kkdai/youtube/v2"

	"github.com/keshon/ilpo/internal/music/parsers"
)

func kkdaiLink(client *youtube.Client, track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	videoID, err := extractYouTubeID(track.URL)
	if err != nil {
		return nil, nil, err
	}

	video, err := client.GetVideo(videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] youtube client error: %w", err)
	}
	track.Duration = video.Duration

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("[kkdai-link] no audio formats found for video")
	}
	formats.Sort()

	link, err := client.GetStreamURL(video, &formats[0])
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] get stream URL error: %w", err)
	}

	ffmpeg := exec.Command("ffmpeg", parsers.FFmpegArgs(link, seekSec)...)

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
