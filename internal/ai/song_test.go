package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/keshon/ilpo/internal/config"
)

type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (p *scriptedProvider) Generate(_ context.Context, messages []Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	p.prompts = append(p.prompts, messages[len(messages)-1].Content)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return p.replies[len(p.replies)-1], nil
}

func newTestService(t *testing.T, p Provider) *SongService {
	t.Helper()
	s, err := NewSongService(p)
	if err != nil {
		t.Fatalf("NewSongService failed: %v", err)
	}
	s.retry.InitialDelay = 0
	s.retry.MaxDelay = 0
	s.retry.Jitter = false
	return s
}

func TestCleanSongName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Darude - Sandstorm", "Darude - Sandstorm"},
		{`"Darude - Sandstorm"`, "Darude - Sandstorm"},
		{"**Darude - Sandstorm**", "Darude - Sandstorm"},
		{"- Darude - Sandstorm", "Darude - Sandstorm"},
		{"* Darude - Sandstorm", "Darude - Sandstorm"},
		{"<think>hmm, finnish trance</think>\nDarude - Sandstorm", "Darude - Sandstorm"},
		{"Darude - Sandstorm\nThis song is a classic.", "Darude - Sandstorm"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cleanSongName(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSuggestWithDescription(t *testing.T) {
	p := &scriptedProvider{replies: []string{"**Darude - Sandstorm**"}}
	s := newTestService(t, p)

	sug, err := s.Suggest(context.Background(), "  finnish trance classic ")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sug.Song != "Darude - Sandstorm" || sug.Random || sug.Description != "finnish trance classic" {
		t.Errorf("unexpected suggestion %+v", sug)
	}
	if !strings.Contains(p.prompts[0], "Description: finnish trance classic") {
		t.Errorf("expected description in prompt, got %q", p.prompts[0])
	}
}

func TestSuggestRandom(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Eppu Normaali - Murheellisten laulujen maa"}}
	s := newTestService(t, p)

	sug, err := s.Suggest(context.Background(), "")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if !sug.Random || sug.Description == "" {
		t.Errorf("expected a random description, got %+v", sug)
	}
}

func TestSuggestRetries(t *testing.T) {
	tests := []struct {
		name  string
		errs  []error
		calls int
		fail  bool
	}{
		{"server error then success", []error{&statusError{503, errors.New("busy")}, &statusError{500, errors.New("oops")}}, 3, false},
		{"rate limited throughout", []error{&statusError{429, errors.New("slow")}, &statusError{429, errors.New("slow")}, &statusError{429, errors.New("slow")}}, 3, true},
		{"bad request is final", []error{&statusError{400, errors.New("bad key")}}, 1, true},
		{"network error is final", []error{errors.New("dial tcp: refused")}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{replies: []string{"A - B"}, errs: tt.errs}
			s := newTestService(t, p)

			_, err := s.Suggest(context.Background(), "anything")
			if (err != nil) != tt.fail {
				t.Fatalf("expected failure %v, got %v", tt.fail, err)
			}
			if p.calls != tt.calls {
				t.Errorf("expected %d calls, got %d", tt.calls, p.calls)
			}
		})
	}
}

func TestSuggestEmptyReply(t *testing.T) {
	p := &scriptedProvider{replies: []string{"  \"\"  "}}
	s := newTestService(t, p)
	if _, err := s.Suggest(context.Background(), "x"); err == nil {
		t.Fatal("expected error for an empty song name")
	}
	if p.calls != 1 {
		t.Errorf("empty replies must not be retried, got %d calls", p.calls)
	}
}

func TestRandomDescription(t *testing.T) {
	s := &SongService{words: Words{
		Moods:      []string{"dreamy", "angry"},
		Adjectives: []string{"hazy", "raw"},
		Genres:     []string{"shoegaze", "humppa"},
		Popularity: []string{"obscure", "famous"},
	}}

	s.intn = func(int) int { return 0 }
	if got, want := s.RandomDescription(), "dreamy and hazy, shoegaze, by a obscure artist, with a hazy vibe"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	s.intn = func(n int) int { return n - 1 }
	if got, want := s.RandomDescription(), "angry and raw, humppa, by a famous artist, with a raw vibe, that feels angry"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		notConf bool
		fail    bool
	}{
		{"pollinations", config.Config{AIProvider: "pollinations"}, false, false},
		{"openai with key", config.Config{AIProvider: "openai", GeminiAPIKey: "k", AIModel: "m"}, false, false},
		{"openai without key", config.Config{AIProvider: "openai"}, true, true},
		{"unknown", config.Config{AIProvider: "g4f"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(&tt.cfg)
			if (err != nil) != tt.fail {
				t.Fatalf("expected failure %v, got %v", tt.fail, err)
			}
			if errors.Is(err, ErrNotConfigured) != tt.notConf {
				t.Errorf("expected ErrNotConfigured %v, got %v", tt.notConf, err)
			}
			if !tt.fail && p == nil {
				t.Error("expected a provider")
			}
		})
	}
}

func TestPollinationsProvider(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[{"message":{"content":"<think>x</think>\"Darude - Sandstorm\""}}]}`))
		}))
		defer srv.Close()

		p := NewPollinationsProvider()
		p.endpoint = srv.URL
		got, err := p.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if got != "Darude - Sandstorm" {
			t.Errorf("expected cleaned reply, got %q", got)
		}
	})

	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		p := NewPollinationsProvider()
		p.endpoint = srv.URL
		_, err := p.Generate(context.Background(), nil)
		if !retryable(err) {
			t.Errorf("expected a retryable status error, got %v", err)
		}
	})
}
