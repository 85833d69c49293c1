package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StoragePath != "data/datastore.json" {
		t.Errorf("expected default storage path, got %q", cfg.StoragePath)
	}
	if len(cfg.CommandPrefixes) != 2 || cfg.CommandPrefixes[0] != "i." || cfg.CommandPrefixes[1] != "ilpo." {
		t.Errorf("unexpected prefixes %v", cfg.CommandPrefixes)
	}
	if cfg.VoiceConnectTimeout != 10*time.Second {
		t.Errorf("expected 10s connect timeout, got %v", cfg.VoiceConnectTimeout)
	}
	if cfg.VoiceReconnectAttempts != 3 {
		t.Errorf("expected 3 reconnect attempts, got %d", cfg.VoiceReconnectAttempts)
	}
	if cfg.AIEnabled() {
		t.Error("AI must be disabled without an API key")
	}
}

func TestParseRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Parse(); err == nil {
		t.Fatal("expected an error for a missing token")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_PREFIXES", " !, ,bot. ")
	t.Setenv("DEFAULT_LOCALE", " FI ")
	t.Setenv("VOICE_PLAYING_TIMEOUT", "3s")
	t.Setenv("AI_PROVIDER", "pollinations")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CommandPrefixes) != 2 || cfg.CommandPrefixes[0] != "!" || cfg.CommandPrefixes[1] != "bot." {
		t.Errorf("prefixes were not trimmed: %q", cfg.CommandPrefixes)
	}
	if cfg.DefaultLocale != "fi" {
		t.Errorf("expected locale fi, got %q", cfg.DefaultLocale)
	}
	if cfg.VoicePlayingTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.VoicePlayingTimeout)
	}
	if !cfg.AIEnabled() {
		t.Error("pollinations needs no key")
	}
}

func TestParseRejectsEmptyPrefixes(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_PREFIXES", " , ")
	if _, err := Parse(); err == nil {
		t.Fatal("expected an error for empty prefixes")
	}
}
