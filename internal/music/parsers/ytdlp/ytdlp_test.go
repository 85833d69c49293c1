package ytdlp

import (
	"testing"
	"time"

	"github.com/keshon/ilpo/internal/music/parsers"
)

func TestParseInfo(t *testing.T) {
	raw := []byte(`{
		"title": "Live set",
		"uploader": "DJ",
		"thumbnail": "https://img/x.jpg",
		"duration": 0,
		"formats": [{"url": " https://cdn/a ", "fragments": [{"duration": 90.5}]}]
	}`)

	info, err := parseInfo(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.URL != "https://cdn/a" {
		t.Errorf("expected first format url, got %q", info.URL)
	}

	track := &parsers.TrackParse{Title: "kept"}
	info.apply(track)
	if track.Duration != 90500*time.Millisecond {
		t.Errorf("expected fragment duration, got %v", track.Duration)
	}
	if track.Title != "kept" || track.Artist != "DJ" || track.Thumbnail != "https://img/x.jpg" {
		t.Errorf("unexpected track %+v", track)
	}
}

func TestParseInfoInvalid(t *testing.T) {
	if _, err := parseInfo([]byte("not json")); err == nil {
		t.Fatal("expected an error")
	}
}
