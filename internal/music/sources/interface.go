package sources

import "context"

type Source interface {
	// Match checks if this source can handle the given input
	Match(ctx context.Context, input string) bool

	// Resolve turns an input into one or more playable tracks
	Resolve(ctx context.Context, input string, selectedParser string) ([]TrackInfo, error)

	// SourceName returns the string identifier ("youtube", "radio", etc.)
	SourceName() string

	// AvailableParsers returns the list of parsers supported by this source
	AvailableParsers() []string
}
