package ai

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/keshon/ilpo/pkg/retrylimit"
	"github.com/rs/zerolog/log"
)

//go:embed words/*.txt
var wordFS embed.FS

const songPrompt = `You are a music recommendation AI. I will give you a description of a song, and you must respond with ONLY the name of one real song that matches the description. Your response must be EXACTLY the song name and nothing else: no explanations, no "here's a song", no additional text, no quotes, no formatting.

The song can be famous, semi-famous, or relatively unknown, but it must be a real song that exists. Pick something that fits the description well. Even when no song matches the description exactly, still come up with something that is at least close. Respond with the format: "Artist Name - Song Name"

Description: %s

Song name:`

// Suggestion is a song picked by the model.
type Suggestion struct {
	Song        string
	Description string
	Random      bool
}

// Words are the vocabularies random descriptions are built from.
type Words struct {
	Moods      []string
	Adjectives []string
	Genres     []string
	Popularity []string
}

// SongService asks a provider for one song that fits a description.
type SongService struct {
	provider Provider
	words    Words
	intn     func(n int) int
	retry    retrylimit.RetryConfig
}

// NewSongService uses the embedded word lists.
func NewSongService(provider Provider) (*SongService, error) {
	words, err := loadWords()
	if err != nil {
		return nil, err
	}
	return &SongService{
		provider: provider,
		words:    words,
		intn:     rand.IntN,
		retry: retrylimit.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     4 * time.Second,
			Multiplier:   2,
			Jitter:       true,
		},
	}, nil
}

func loadWords() (Words, error) {
	read := func(name string) ([]string, error) {
		data, err := wordFS.ReadFile("words/" + name)
		if err != nil {
			return nil, fmt.Errorf("read word list %s: %w", name, err)
		}
		var out []string
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out, nil
	}

	var w Words
	var err error
	if w.Moods, err = read("moods.txt"); err != nil {
		return w, err
	}
	if w.Adjectives, err = read("adjectives.txt"); err != nil {
		return w, err
	}
	if w.Genres, err = read("genres.txt"); err != nil {
		return w, err
	}
	if w.Popularity, err = read("popularity.txt"); err != nil {
		return w, err
	}
	return w, nil
}

func (s *SongService) pick(list []string) string {
	return list[s.intn(len(list))]
}

// RandomDescription combines the word lists into something like
// "dreamy and hazy, shoegaze, by a little-known artist, with a warm vibe".
func (s *SongService) RandomDescription() string {
	w := s.words
	var parts []string

	if len(w.Moods) > 0 && len(w.Adjectives) > 0 {
		parts = append(parts, s.pick(w.Moods)+" and "+s.pick(w.Adjectives))
	}
	if len(w.Genres) > 0 {
		parts = append(parts, s.pick(w.Genres))
	}
	if len(w.Popularity) > 0 {
		parts = append(parts, "by a "+s.pick(w.Popularity)+" artist")
	}
	if len(w.Adjectives) > 0 {
		parts = append(parts, "with a "+s.pick(w.Adjectives)+" vibe")
	}
	// Extra mood in roughly 60% of descriptions.
	if len(w.Moods) > 0 && s.intn(10) >= 4 {
		parts = append(parts, "that feels "+s.pick(w.Moods))
	}
	return strings.Join(parts, ", ")
}

// Suggest returns one song for description, or for a random description
// when it is blank.
func (s *SongService) Suggest(ctx context.Context, description string) (Suggestion, error) {
	sug := Suggestion{Description: strings.TrimSpace(description)}
	if sug.Description == "" {
		sug.Description = s.RandomDescription()
		sug.Random = true
	}
	if sug.Description == "" {
		return sug, errors.New("no description available")
	}

	log.Info().Str("description", sug.Description).Bool("random", sug.Random).Msg("[AI] Generating song")

	messages := []Message{{Role: "user", Content: fmt.Sprintf(songPrompt, sug.Description)}}
	err := retrylimit.WithRetryConfig(ctx, func() error {
		reply, err := s.provider.Generate(ctx, messages)
		if err != nil {
			if !retryable(err) {
				return retrylimit.Fatal(err)
			}
			return err
		}
		sug.Song = cleanSongName(reply)
		if sug.Song == "" {
			return retrylimit.Fatal(errors.New("ai returned an empty song name"))
		}
		return nil
	}, nil, s.retry)
	if err != nil {
		return sug, fmt.Errorf("suggest song: %w", err)
	}

	log.Info().Str("song", sug.Song).Msg("[AI] Song suggested")
	return sug, nil
}

// retryable reports whether err is a rate limit or a server error.
func retryable(err error) bool {
	var se interface{ StatusCode() int }
	if !errors.As(err, &se) {
		return false
	}
	code := se.StatusCode()
	return code == 429 || code >= 500
}
