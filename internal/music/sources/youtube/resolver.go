// /internal/music/sources/youtube/resolver.go
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

var (
	videoPattern    = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]+)(?:\\u0026list=([a-zA-Z0-9_-]+))?[^"]*`)
	ErrNoVideoMatch = errors.New("no video found for the given title")
)

type YouTubeResolver struct {
	BaseURL string
	Client  *http.Client
}

func NewYouTubeResolver(client *http.Client) *YouTubeResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &YouTubeResolver{
		BaseURL: "https://www.youtube.com",
		Client:  client,
	}
}

// SearchFirstVideoURL scrapes the results page and returns the first video link.
func (r *YouTubeResolver) SearchFirstVideoURL(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("YouTube search failed with status code %v", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return firstVideoURL(r.BaseURL, body)
}

func firstVideoURL(baseURL string, body []byte) (string, error) {
	matches := videoPattern.FindSubmatch(body)
	if len(matches) < 2 {
		return "", ErrNoVideoMatch
	}
	return fmt.Sprintf("%s/watch?v=%s", baseURL, matches[1]), nil
}
