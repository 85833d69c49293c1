package radio

import (
	"context"
	"errors"
	"net/http"

	"github.com/keshon/ilpo/internal/music/sources"
)

type RadioSource struct {
	resolver *RadioResolver
}

func New(client *http.Client) *RadioSource {
	return &RadioSource{
		resolver: NewRadioResolver(client),
	}
}

func (r *RadioSource) Match(ctx context.Context, input string) bool {
	ok, _, err := r.resolver.IsValidURL(ctx, input)
	return err == nil && ok
}

func (r *RadioSource) Resolve(ctx context.Context, input string, selectedParser string) ([]sources.TrackInfo, error) {
	parsers, err := sources.PickParser(r, selectedParser)
	if err != nil {
		return nil, err
	}

	ok, _, err := r.resolver.IsValidURL(ctx, input)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("invalid radio URL: " + input)
	}

	return []sources.TrackInfo{{
		URL:              input,
		Title:            titleFromURL(input),
		SourceName:       sources.SourceRadio,
		AvailableParsers: parsers,
	}}, nil
}

func (r *RadioSource) SourceName() string {
	return sources.SourceRadio
}

func (r *RadioSource) AvailableParsers() []string {
	return []string{"ffmpeg-link"}
}
