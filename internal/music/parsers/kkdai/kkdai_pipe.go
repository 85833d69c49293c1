package kkdai

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/kkdai/youtube/v2"

	"github.com/keshon/ilpo/internal/music/parsers"
)

func kkdaiPipe(client *youtube.Client, track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	videoID, err := extractYouTubeID(track.URL)
	if err != nil {
		return nil, nil, err
	}

	video, err := client.GetVideo(videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] youtube client error: %w", err)
	}

	track.Duration = video.Duration
	if track.Title == "" {
		track.Title = video.Title
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("[kkdai-pipe] no audio formats found for video")
	}
	formats.Sort()

	stream, _, err := client.GetStream(video, &formats[0])
	if err != nil {
		return nil, nil, fmt.Errorf("get stream error: %w", err)
	}

	ffmpeg := exec.Command("ffmpeg", parsers.FFmpegArgs("pipe:0", seekSec)...)
	ffmpeg.Stdin = stream

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}

	if err := ffmpeg.Start(); err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		stream.Close()
		_ = ffmpeg.Process.Kill()
		_ = ffmpeg.Wait()
	}

	return reader, cleanup, nil
}
