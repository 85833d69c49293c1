package source_resolver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/keshon/ilpo/internal/music/sources"
	"github.com/keshon/ilpo/internal/music/sources/radio"
	"github.com/keshon/ilpo/internal/music/sources/soundcloud"
	"github.com/keshon/ilpo/internal/music/sources/youtube"
)

var ErrNoSource = errors.New("no matching source found")

type SourceResolver struct {
	Sources map[string]sources.Source
}

// New builds the resolver with every known source. client and playlists
// may be nil.
func New(client *http.Client, playlists youtube.PlaylistFetcher) *SourceResolver {
	return NewWithSources(youtube.New(client, playlists), soundcloud.New(client), radio.New(nil))
}

func NewWithSources(list ...sources.Source) *SourceResolver {
	r := &SourceResolver{Sources: make(map[string]sources.Source, len(list))}
	for _, s := range list {
		r.Sources[s.SourceName()] = s
	}
	return r
}

// Resolve turns user input into playable tracks. selectedSource and
// selectedParser may be empty for automatic detection.
func (r *SourceResolver) Resolve(ctx context.Context, input, selectedSource, selectedParser string) ([]sources.TrackInfo, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty input")
	}

	if selectedSource != "" && selectedSource != sources.SourceAuto {
		src, ok := r.Sources[selectedSource]
		if !ok {
			return nil, errors.New("unknown source: " + selectedSource)
		}
		if !sources.IsURL(input) {
			if selectedSource != sources.SourceYouTube && selectedSource != sources.SourceSoundCloud {
				return nil, errors.New("title search is only supported on " + sources.SourceYouTube + " and " + sources.SourceSoundCloud)
			}
			return src.Resolve(ctx, input, selectedParser)
		}
		if !src.Match(ctx, input) {
			return nil, errors.New("input does not match selected source: " + selectedSource)
		}
		return src.Resolve(ctx, input, selectedParser)
	}

	if !sources.IsURL(input) {
		yt, ok := r.Sources[sources.SourceYouTube]
		if !ok {
			return nil, errors.New(sources.SourceYouTube + " source not available for title search")
		}
		return yt.Resolve(ctx, input, selectedParser)
	}

	// Radio probing hits the network, so the cheap matchers go first.
	for _, name := range []string{sources.SourceYouTube, sources.SourceSoundCloud} {
		if s, ok := r.Sources[name]; ok && s.Match(ctx, input) {
			return s.Resolve(ctx, input, selectedParser)
		}
	}

	if radioSrc, ok := r.Sources[sources.SourceRadio]; ok {
		return radioSrc.Resolve(ctx, input, selectedParser)
	}

	return nil, ErrNoSource
}
