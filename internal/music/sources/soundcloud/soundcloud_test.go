package soundcloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchFirstTrackURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "site:soundcloud.com lofi beats" {
			t.Errorf("unexpected query %q", q)
		}
		_, _ = w.Write([]byte(`<a class="result__url" href="x">
			soundcloud.com/artist/lofi-beats
		</a>`))
	}))
	defer srv.Close()

	src := New(srv.Client())
	src.resolver.SearchURL = srv.URL

	tracks, err := src.Resolve(context.Background(), "lofi beats", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracks[0].URL != "https://soundcloud.com/artist/lofi-beats" {
		t.Errorf("unexpected url %q", tracks[0].URL)
	}
}

func TestMatch(t *testing.T) {
	src := New(nil)
	if !src.Match(context.Background(), "https://soundcloud.com/a/b") {
		t.Error("expected soundcloud link to match")
	}
	if src.Match(context.Background(), "plain words") {
		t.Error("plain text must not match")
	}
}
