package kkdai

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/proxy"

	"github.com/keshon/ilpo/internal/music/parsers"
)

type KKDAIStreamer struct {
	Client *youtube.Client
}

func New(proxyStr string) *KKDAIStreamer {
	return &KKDAIStreamer{Client: NewKkdaiClient(proxyStr)}
}

func (s *KKDAIStreamer) GetLinkStream(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	return kkdaiLink(s.Client, track, seekSec)
}
func (s *KKDAIStreamer) GetPipeStream(track *parsers.TrackParse, seekSec float64) (io.ReadCloser, func(), error) {
	return kkdaiPipe(s.Client, track, seekSec)
}
func (s *KKDAIStreamer) SupportsPipe() bool {
	return true
}

// Metadata is what the queue shows about a YouTube video.
type Metadata struct {
	Title     string
	Author    string
	Duration  time.Duration
	Thumbnail string
}

// Describe fetches video metadata without opening a stream.
func (s *KKDAIStreamer) Describe(ctx context.Context, videoURL string) (Metadata, error) {
	videoID, err := extractYouTubeID(videoURL)
	if err != nil {
		return Metadata{}, err
	}
	video, err := s.Client.GetVideoContext(ctx, videoID)
	if err != nil {
		return Metadata{}, fmt.Errorf("[kkdai] describe %s: %w", videoID, err)
	}
	return metadataOf(video), nil
}

func metadataOf(video *youtube.Video) Metadata {
	md := Metadata{
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
	}
	var best uint
	for _, th := range video.Thumbnails {
		if th.Width >= best {
			best = th.Width
			md.Thumbnail = th.URL
		}
	}
	return md
}

// NewKkdaiClient builds a YouTube client, optionally routed through an
// http(s), socks5 or socks4 proxy.
func NewKkdaiClient(proxyStr string) *youtube.Client {
	transport, err := proxyTransport(proxyStr)
	if err != nil {
		log.Warn().Err(err).Str("proxy", proxyStr).Msg("[kkdai] proxy unusable, going direct")
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	if transport != nil {
		httpClient.Transport = transport
		log.Info().Str("proxy", redact(proxyStr)).Msg("[kkdai] using proxy")
	}
	return &youtube.Client{HTTPClient: httpClient}
}

func proxyTransport(proxyStr string) (*http.Transport, error) {
	if proxyStr == "" {
		return nil, nil
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy format: %w", err)
	}

	switch proxyURL.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil
	case "socks5":
		auth := &proxy.Auth{}
		if proxyURL.User != nil {
			auth.User = proxyURL.User.Username()
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		} else {
			auth = nil
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("SOCKS5 dialer error: %w", err)
		}
		return dialerTransport(dialer), nil
	case "socks4":
		// go-socks4 registers the scheme with x/net/proxy on import.
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{Timeout: 10 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("SOCKS4 dialer error: %w", err)
		}
		return dialerTransport(dialer), nil
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", proxyURL.Scheme)
	}
}

func dialerTransport(dialer proxy.Dialer) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}
}

func redact(proxyStr string) string {
	u, err := url.Parse(proxyStr)
	if err != nil {
		return "invalid"
	}
	return u.Redacted()
}
