package kkdai

import (
	"context"
	"errors"
	"fmt"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/keshon/ilpo/internal/music/sources"
)

// maxPlaylistTracks caps how many entries of one playlist are queued.
const maxPlaylistTracks = 100

// Playlist lists the videos of a YouTube playlist with the metadata the
// playlist page already carries.
func (s *KKDAIStreamer) Playlist(ctx context.Context, playlistURL string) ([]sources.TrackInfo, error) {
	pl, err := s.Client.GetPlaylistContext(ctx, playlistURL)
	if err != nil {
		return nil, fmt.Errorf("[kkdai] playlist %s: %w", playlistURL, err)
	}
	tracks := playlistTracks(pl)
	if len(tracks) == 0 {
		return nil, errors.New("[kkdai] playlist has no playable videos")
	}
	return tracks, nil
}

func playlistTracks(pl *youtube.Playlist) []sources.TrackInfo {
	var out []sources.TrackInfo
	for _, v := range pl.Videos {
		if v == nil || v.ID == "" {
			continue
		}
		out = append(out, sources.TrackInfo{
			URL:      "https://www.youtube.com/watch?v=" + v.ID,
			Title:    v.Title,
			Author:   v.Author,
			Duration: v.Duration,
		})
		if len(out) == maxPlaylistTracks {
			break
		}
	}
	return out
}
