package sources

import (
	"errors"
	"slices"
	"strings"
	"time"
)

const (
	SourceAuto       = "auto"
	SourceYouTube    = "youtube"
	SourceRadio      = "radio"
	SourceSoundCloud = "soundcloud"
)

type TrackInfo struct {
	URL   string
	Title string
	// Author and Duration are set when the source already knows them.
	Author           string
	Duration         time.Duration
	SourceName       string
	AvailableParsers []string
}

// IsURL reports whether s looks like an http(s) link.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// MoveToFront returns a new slice where item is the first element.
func MoveToFront(list []string, item string) []string {
	if len(list) == 0 || item == "" {
		return list
	}
	if list[0] == item {
		return list
	}

	ordered := make([]string, 0, len(list))
	ordered = append(ordered, item)
	for _, v := range list {
		if v != item {
			ordered = append(ordered, v)
		}
	}
	return ordered
}

// PickParser validates selected against the parsers of src, defaulting to
// the first one, and returns the parser order to try.
func PickParser(src Source, selected string) ([]string, error) {
	parsers := src.AvailableParsers()
	if len(parsers) == 0 {
		return nil, errors.New(src.SourceName() + ": no available parsers")
	}
	if selected == "" {
		return parsers, nil
	}
	if !slices.Contains(parsers, selected) {
		return nil, errors.New(src.SourceName() + " source does not support " + selected + " parser")
	}
	return MoveToFront(parsers, selected), nil
}
