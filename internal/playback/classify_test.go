package playback

import (
	"context"
	"errors"
	"testing"
)

func TestIsAudio(t *testing.T) {
	tests := []struct {
		a    Attachment
		want bool
	}{
		{Attachment{Filename: "song.MP3"}, true},
		{Attachment{Filename: "voice.opus"}, true},
		{Attachment{Filename: "clip.webm"}, true},
		{Attachment{Filename: "noext", ContentType: "audio/ogg"}, true},
		{Attachment{Filename: "cat.png", ContentType: "image/png"}, false},
		{Attachment{Filename: "notes.txt"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.a.Filename, func(t *testing.T) {
			if got := IsAudio(tt.a); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	audio := Attachment{Filename: "song.mp3", URL: "https://cdn.example/song.mp3"}
	image := Attachment{Filename: "cat.png", URL: "https://cdn.example/cat.png"}
	refs := func(list ...Attachment) func(context.Context) ([]Attachment, error) {
		return func(context.Context) ([]Attachment, error) { return list, nil }
	}
	broken := func(context.Context) ([]Attachment, error) { return nil, errors.New("unknown message") }

	tests := []struct {
		name     string
		req      Request
		kind     Kind
		url      string
		query    string
		wantFail bool
	}{
		{"attachment", Request{Attachments: []Attachment{image, audio}, Query: "ignored"}, KindDirect, audio.URL, "", false},
		{"referenced", Request{Referenced: refs(audio), Query: "ignored"}, KindDirect, audio.URL, "", false},
		{"own attachment first", Request{Attachments: []Attachment{audio}, Referenced: refs(Attachment{Filename: "other.wav", URL: "x"})}, KindDirect, audio.URL, "", false},
		{"non audio falls to query", Request{Attachments: []Attachment{image}, Query: " hello "}, KindQueued, "", "hello", false},
		{"broken reference falls to query", Request{Referenced: broken, Query: "hello"}, KindQueued, "", "hello", false},
		{"broken reference without query", Request{Referenced: broken}, 0, "", "", true},
		{"empty", Request{Query: "  "}, 0, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, res := classify(context.Background(), tt.req)
			if tt.wantFail {
				if res.Success || res.Code != CodeNoContent {
					t.Fatalf("expected no_content, got %+v", res)
				}
				return
			}
			if !res.Success {
				t.Fatalf("expected success, got %+v", res)
			}
			if cl.Kind != tt.kind || cl.URL != tt.url || cl.Query != tt.query {
				t.Errorf("unexpected classification %+v", cl)
			}
			if cl.Kind == KindDirect && cl.Filename != "song.mp3" {
				t.Errorf("expected filename song.mp3, got %q", cl.Filename)
			}
		})
	}
}

func TestAttachmentName(t *testing.T) {
	cdn := "https://cdn.discordapp.com/attachments/1/2/song.mp3?ex=66a1&is=669f&hm=abc123&"
	tests := []struct {
		name string
		a    Attachment
		want string
	}{
		{"filename wins", Attachment{Filename: "Song Title.flac", URL: cdn}, "Song Title.flac"},
		{"query string dropped", Attachment{URL: cdn}, "song.mp3"},
		{"no path", Attachment{URL: "https://cdn.example"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := attachmentName(tt.a); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassifyNamelessAttachment(t *testing.T) {
	url := "https://cdn.discordapp.com/attachments/1/2/song.mp3?ex=66a1&hm=abc123"
	cl, res := classify(context.Background(), Request{Attachments: []Attachment{{URL: url}}})
	if !res.Success || cl.Kind != KindDirect {
		t.Fatalf("expected direct classification, got %+v %+v", cl, res)
	}
	if cl.Filename != "song.mp3" {
		t.Errorf("expected song.mp3, got %q", cl.Filename)
	}
	if cl.URL != url {
		t.Errorf("expected the full URL to be played, got %q", cl.URL)
	}
}
