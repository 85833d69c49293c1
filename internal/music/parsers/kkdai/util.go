package kkdai

import (
	"errors"
	"net/url"
	"strings"
)

func extractYouTubeID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}

	switch host := strings.TrimPrefix(u.Hostname(), "www."); host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	case "youtube.com", "music.youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		if id, ok := strings.CutPrefix(u.Path, "/shorts/"); ok && id != "" {
			return strings.Trim(id, "/"), nil
		}
		return "", errors.New("invalid YouTube URL format")
	}
	return "", errors.New("unsupported URL format")
}
