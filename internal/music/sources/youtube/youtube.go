package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/keshon/ilpo/internal/music/sources"
)

// PlaylistFetcher lists the videos of a YouTube playlist.
type PlaylistFetcher interface {
	Playlist(ctx context.Context, playlistURL string) ([]sources.TrackInfo, error)
}

type YouTubeSource struct {
	resolver  *YouTubeResolver
	playlists PlaylistFetcher
}

// New builds the source. playlists may be nil, playlist links are then
// rejected.
func New(client *http.Client, playlists PlaylistFetcher) *YouTubeSource {
	return &YouTubeSource{
		resolver:  NewYouTubeResolver(client),
		playlists: playlists,
	}
}

func (y *YouTubeSource) Match(_ context.Context, input string) bool {
	return isYouTubeURL(input)
}

func (y *YouTubeSource) Resolve(ctx context.Context, input string, selectedParser string) ([]sources.TrackInfo, error) {
	parsers, err := sources.PickParser(y, selectedParser)
	if err != nil {
		return nil, err
	}

	input = strings.TrimSpace(input)

	if isYouTubePlaylistURL(input) {
		return y.resolvePlaylist(ctx, input, parsers)
	}

	if isYouTubeVideoURL(input) {
		return []sources.TrackInfo{{
			URL:              CleanVideoURL(input),
			SourceName:       sources.SourceYouTube,
			AvailableParsers: parsers,
		}}, nil
	}

	if sources.IsURL(input) {
		return nil, errors.New("invalid YouTube URL format")
	}

	videoURL, err := y.resolver.SearchFirstVideoURL(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("could not find YouTube video for %q: %w", input, err)
	}

	return []sources.TrackInfo{{
		URL:              videoURL,
		Title:            input,
		SourceName:       sources.SourceYouTube,
		AvailableParsers: parsers,
	}}, nil
}

func (y *YouTubeSource) resolvePlaylist(ctx context.Context, input string, parsers []string) ([]sources.TrackInfo, error) {
	if y.playlists == nil {
		return nil, errors.New("YouTube playlists are not supported")
	}
	tracks, err := y.playlists.Playlist(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("could not load YouTube playlist: %w", err)
	}
	for i := range tracks {
		tracks[i].SourceName = sources.SourceYouTube
		tracks[i].AvailableParsers = parsers
	}
	return tracks, nil
}

func (y *YouTubeSource) SourceName() string {
	return sources.SourceYouTube
}

func (y *YouTubeSource) AvailableParsers() []string {
	return []string{"kkdai-link", "kkdai-pipe", "ytdlp-link", "ytdlp-pipe"}
}
