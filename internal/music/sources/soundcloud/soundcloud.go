// /internal/music/sources/soundcloud/soundcloud.go
package soundcloud

import (
	"context"
	"net/http"
	"strings"

	"github.com/keshon/ilpo/internal/music/sources"
)

type SoundCloudSource struct {
	resolver *SoundCloudResolver
}

func New(client *http.Client) *SoundCloudSource {
	return &SoundCloudSource{
		resolver: NewSoundCloudResolver(client),
	}
}

func (s *SoundCloudSource) Match(_ context.Context, input string) bool {
	return strings.Contains(input, "soundcloud.com/")
}

func (s *SoundCloudSource) Resolve(ctx context.Context, input string, selectedParser string) ([]sources.TrackInfo, error) {
	parsers, err := sources.PickParser(s, selectedParser)
	if err != nil {
		return nil, err
	}

	input = strings.TrimSpace(input)
	if sources.IsURL(input) {
		return []sources.TrackInfo{{
			URL:              input,
			SourceName:       sources.SourceSoundCloud,
			AvailableParsers: parsers,
		}}, nil
	}

	trackURL, err := s.resolver.SearchFirstTrackURL(ctx, input)
	if err != nil {
		return nil, err
	}

	return []sources.TrackInfo{{
		URL:              trackURL,
		Title:            input,
		SourceName:       sources.SourceSoundCloud,
		AvailableParsers: parsers,
	}}, nil
}

func (s *SoundCloudSource) SourceName() string {
	return sources.SourceSoundCloud
}

func (s *SoundCloudSource) AvailableParsers() []string {
	return []string{"ytdlp-pipe", "ytdlp-link"}
}
