package source_resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/keshon/ilpo/internal/music/sources"
)

type fakeSource struct {
	name    string
	match   bool
	calls   int
	lastIn  string
	parsers []string
}

func (f *fakeSource) Match(context.Context, string) bool { return f.match }
func (f *fakeSource) Resolve(_ context.Context, input, _ string) ([]sources.TrackInfo, error) {
	f.calls++
	f.lastIn = input
	return []sources.TrackInfo{{URL: input, SourceName: f.name}}, nil
}
func (f *fakeSource) SourceName() string         { return f.name }
func (f *fakeSource) AvailableParsers() []string { return f.parsers }

func TestResolveRouting(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		ytMatch  bool
		scMatch  bool
		wantFrom string
	}{
		{"title goes to youtube", "never gonna give you up", false, false, sources.SourceYouTube},
		{"youtube link", "https://youtu.be/x", true, false, sources.SourceYouTube},
		{"soundcloud link", "https://soundcloud.com/a/b", false, true, sources.SourceSoundCloud},
		{"other link falls back to radio", "https://radio.example/live", false, false, sources.SourceRadio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt := &fakeSource{name: sources.SourceYouTube, match: tt.ytMatch}
			sc := &fakeSource{name: sources.SourceSoundCloud, match: tt.scMatch}
			rd := &fakeSource{name: sources.SourceRadio, match: true}
			r := NewWithSources(yt, sc, rd)

			got, err := r.Resolve(context.Background(), "  "+tt.input+" ", "", "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got[0].SourceName != tt.wantFrom {
				t.Errorf("expected source %s, got %s", tt.wantFrom, got[0].SourceName)
			}
			if got[0].URL != tt.input {
				t.Errorf("input was not trimmed: %q", got[0].URL)
			}
		})
	}
}

func TestResolveSelectedSource(t *testing.T) {
	rd := &fakeSource{name: sources.SourceRadio, match: false}
	r := NewWithSources(rd)

	if _, err := r.Resolve(context.Background(), "words", sources.SourceRadio, ""); err == nil {
		t.Error("radio must refuse title search")
	}
	if _, err := r.Resolve(context.Background(), "https://x/y", sources.SourceRadio, ""); err == nil {
		t.Error("expected mismatch error")
	}
	if _, err := r.Resolve(context.Background(), "https://x/y", "nope", ""); err == nil {
		t.Error("expected unknown source error")
	}
}

func TestResolveNoSource(t *testing.T) {
	r := NewWithSources()
	if _, err := r.Resolve(context.Background(), "https://x/y", "", ""); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "   ", "", ""); err == nil {
		t.Error("expected error for empty input")
	}
}
