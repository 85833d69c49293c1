package ytdlp

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/keshon/ilpo/internal/music/parsers"
)

type YTDLPStreamer struct{}

func (s *YTDLPStreamer) GetLinkStream(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	return ytdlpLink(track, seekSec)
}
func (s *YTDLPStreamer) GetPipeStream(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	return ytdlpPipe(track, seekSec)
}
func (s *YTDLPStreamer) SupportsPipe() bool {
	return true
}

type ytdlpInfo struct {
	Title     string  `json:"title"`
	Uploader  string  `json:"uploader"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
	URL       string  `json:"url"`
	Formats   []struct {
		URL       string `json:"url"`
		Fragments []struct {
			Duration float64 `json:"duration"`
		} `json:"fragments,omitempty"`
	} `json:"formats"`
}

func inspect(trackURL string) (*ytdlpInfo, error) {
	output, err := exec.Command("yt-dlp", "-j", "--no-playlist", "-f", "bestaudio", trackURL).Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp inspect error: %w", err)
	}
	return parseInfo(output)
}

func parseInfo(output []byte) (*ytdlpInfo, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}

	// Live and fragmented media keep the duration on the first fragment.
	if info.Duration == 0 && len(info.Formats) > 0 && len(info.Formats[0].Fragments) > 0 {
		info.Duration = info.Formats[0].Fragments[0].Duration
	}

	info.URL = strings.TrimSpace(info.URL)
	if info.URL == "" && len(info.Formats) > 0 {
		info.URL = strings.TrimSpace(info.Formats[0].URL)
	}
	return &info, nil
}

func (info *ytdlpInfo) apply(track *parsers.TrackParse) {
	track.Duration = time.Duration(info.Duration * float64(time.Second))
	if track.Title == "" {
		track.Title = info.Title
	}
	if track.Artist == "" {
		track.Artist = info.Uploader
	}
	if track.Thumbnail == "" {
		track.Thumbnail = info.Thumbnail
	}
}
