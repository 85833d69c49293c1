package soundcloud

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
	trackLinkRegex  = regexp.MustCompile(`(?s)<a class="result__url"[^>]*>\s*(soundcloud\.com/[^<\s]+)\s*</a>`)
	ErrNoTrackMatch = errors.New("no track found for the given query")
)

type SoundCloudResolver struct {
	SearchURL string
	Client    *http.Client
}

func NewSoundCloudResolver(client *http.Client) *SoundCloudResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SoundCloudResolver{
		SearchURL: "https://duckduckgo.com/html/",
		Client:    client,
	}
}

// SearchFirstTrackURL finds a SoundCloud track through a site-restricted web search.
func (r *SoundCloudResolver) SearchFirstTrackURL(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s?q=%s", r.SearchURL, url.QueryEscape("site:soundcloud.com "+query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DuckDuckGo search failed with status code %v", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := trackLinkRegex.FindSubmatch(body)
	if len(matches) < 2 {
		return "", ErrNoTrackMatch
	}
	return "https://" + string(matches[1]), nil
}
