package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/music/player"
	"github.com/keshon/ilpo/internal/playback"
)

func slash(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: description, Type: discordgo.ChatApplicationCommand}
}

func TestHashCommand(t *testing.T) {
	a := slash("play", "Play a song")
	fi := map[discordgo.Locale]string{discordgo.Finnish: "Soita biisi"}
	b := slash("play", "Play a song")
	b.DescriptionLocalizations = &fi

	if hashCommand(a) != hashCommand(slash("play", "Play a song")) {
		t.Error("expected equal definitions to hash equally")
	}
	if hashCommand(a) == hashCommand(b) {
		t.Error("expected localizations to change the hash")
	}
	a.ID, a.Version = "123", "456"
	if hashCommand(a) != hashCommand(slash("play", "Play a song")) {
		t.Error("expected runtime fields to be ignored")
	}
}

func TestCommandDiff(t *testing.T) {
	play, skip := slash("play", "Play"), slash("skip", "Skip")
	cached := map[string]string{"play": hashCommand(play), "skip": "stale"}
	existing := []*discordgo.ApplicationCommand{
		{ID: "1", Name: "play"},
		{ID: "2", Name: "skip"},
		{ID: "3", Name: "purge"},
	}

	changed, obsolete, hashes := commandDiff([]*discordgo.ApplicationCommand{play, skip}, existing, cached)
	if len(changed) != 1 || changed[0].Name != "skip" {
		t.Errorf("expected only skip to change, got %v", changed)
	}
	if len(obsolete) != 1 || obsolete[0].ID != "3" {
		t.Errorf("expected purge to be obsolete, got %v", obsolete)
	}
	if hashes["skip"] != hashCommand(skip) {
		t.Errorf("expected fresh hash for skip, got %q", hashes["skip"])
	}

	t.Run("missing remotely", func(t *testing.T) {
		changed, _, _ := commandDiff([]*discordgo.ApplicationCommand{play}, nil, cached)
		if len(changed) != 1 {
			t.Errorf("expected play to be re-created, got %d changes", len(changed))
		}
	})
}

func TestCommandCache(t *testing.T) {
	c := commandCache{dir: t.TempDir()}
	if got := c.load("g1"); len(got) != 0 {
		t.Fatalf("expected empty cache, got %v", got)
	}
	c.save("g1", map[string]string{"play": "abc"})
	if got := c.load("g1"); got["play"] != "abc" {
		t.Errorf("expected saved hash, got %v", got)
	}
}

func TestCountListeners(t *testing.T) {
	states := []*discordgo.VoiceState{
		{UserID: "bot", ChannelID: "v1"},
		{UserID: "u1", ChannelID: "v1"},
		{UserID: "u2", ChannelID: "v2"},
		{UserID: "other-bot", ChannelID: "v1", Member: &discordgo.Member{User: &discordgo.User{Bot: true}}},
		{UserID: "cached-bot", ChannelID: "v1"},
		nil,
	}
	isBot := func(id string) bool { return id == "cached-bot" }

	if got := countListeners(states, "v1", "bot", isBot); got != 1 {
		t.Errorf("expected 1 listener, got %d", got)
	}
	if got := countListeners(states[:1], "v1", "bot", isBot); got != 0 {
		t.Errorf("expected an empty channel, got %d", got)
	}
}

func TestRequirePermissions(t *testing.T) {
	all := int64(discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak)
	if err := requirePermissions(all, discordgo.PermissionVoiceConnect, discordgo.PermissionVoiceSpeak); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := requirePermissions(discordgo.PermissionVoiceConnect, discordgo.PermissionVoiceConnect, discordgo.PermissionVoiceSpeak)
	if !errors.Is(err, playback.ErrPermission) {
		t.Errorf("expected ErrPermission, got %v", err)
	}
}

func TestWrapREST(t *testing.T) {
	if wrapREST(nil) != nil {
		t.Error("expected nil to stay nil")
	}
	plain := errors.New("boom")
	if wrapREST(plain) != plain {
		t.Error("expected non-REST errors to pass through")
	}
}

func TestEventMessage(t *testing.T) {
	track := &player.Track{Title: "side a"}
	tests := []struct {
		name  string
		ev    player.Event
		key   string
		count string
		ok    bool
	}{
		{"single added", player.Event{Status: player.StatusAdded, Track: track, Count: 1}, "event_added", "", true},
		{"many added", player.Event{Status: player.StatusAdded, Track: track, Count: 12}, "event_added_many", "12", true},
		{"playing", player.Event{Status: player.StatusPlaying, Track: track}, "event_playing", "", true},
		{"paused is not announced", player.Event{Status: player.StatusPaused}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, params, ok := eventMessage(tt.ev)
			if ok != tt.ok || key != tt.key {
				t.Fatalf("expected %q/%v, got %q/%v", tt.key, tt.ok, key, ok)
			}
			if ok && params["title"] != "side a" {
				t.Errorf("expected title side a, got %q", params["title"])
			}
			if params["count"] != tt.count {
				t.Errorf("expected count %q, got %q", tt.count, params["count"])
			}
		})
	}
}
