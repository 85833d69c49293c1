// /internal/music/sources/radio/resolver.go
package radio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var validContentTypes = []string{
	"audio/",
	"video/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/ogg",
	"application/x-scpls",
	"application/xspf+xml",
	"application/octet-stream", // risky but often used for streams
}

// RadioResolver validates streaming links by checking headers and heuristics.
type RadioResolver struct {
	Client *http.Client
}

func NewRadioResolver(client *http.Client) *RadioResolver {
	if client == nil {
		client = &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	return &RadioResolver{Client: client}
}

// IsValidURL checks stream validity based on content-type and file extension.
func (r *RadioResolver) IsValidURL(ctx context.Context, rawURL string) (bool, string, error) {
	contentType, finalURL, err := r.fetchContentType(ctx, rawURL)
	if err != nil {
		return false, "", fmt.Errorf("failed to fetch content type: %w", err)
	}

	if isAllowedType(contentType) || isLikelyPlaylist(finalURL) {
		return true, contentType, nil
	}

	return false, contentType, fmt.Errorf("invalid stream content-type: %q, url: %s", contentType, finalURL)
}

func (r *RadioResolver) fetchContentType(ctx context.Context, rawURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.Client.Do(req)
	if err == nil && resp.StatusCode < 400 {
		resp.Body.Close()
		return resp.Header.Get("Content-Type"), resp.Request.URL.String(), nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	// Some stream servers refuse HEAD; only the headers of a GET are needed.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err = r.Client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("GET fallback failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, 512)

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("GET fallback failed with status %d", resp.StatusCode)
	}
	return resp.Header.Get("Content-Type"), resp.Request.URL.String(), nil
}

func isAllowedType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	contentType = strings.ToLower(contentType)
	for _, allowed := range validContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func isLikelyPlaylist(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u", ".m3u8", ".pls", ".xspf", ".asx":
		return true
	}
	return false
}

// titleFromURL gives a stream a readable provisional name.
func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if base := path.Base(u.Path); base != "/" && base != "." && base != "" {
		if unescaped, err := url.PathUnescape(base); err == nil {
			base = unescaped
		}
		return u.Hostname() + " - " + base
	}
	return u.Hostname()
}
