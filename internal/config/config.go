// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every runtime setting of the bot. Values come from the process
// environment, optionally pre-populated from a .env file.
type Config struct {
	DiscordToken      string   `env:"DISCORD_TOKEN,required,notEmpty"`
	StoragePath       string   `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	CommandPrefixes   []string `env:"COMMAND_PREFIXES" envDefault:"i.,ilpo." envSeparator:","`
	DefaultLocale     string   `env:"DEFAULT_LOCALE" envDefault:"en"`
	InitSlashCommands bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	AIProvider   string `env:"AI_PROVIDER" envDefault:"openai"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	AIBaseURL    string `env:"AI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	AIModel      string `env:"AI_MODEL" envDefault:"gemini-2.5-flash"`

	YouTubeProxy string `env:"YOUTUBE_PROXY"`

	VoiceConnectTimeout    time.Duration `env:"VOICE_CONNECT_TIMEOUT" envDefault:"10s"`
	VoicePlayingTimeout    time.Duration `env:"VOICE_PLAYING_TIMEOUT" envDefault:"8s"`
	VoiceReconnectAttempts int           `env:"VOICE_RECONNECT_ATTEMPTS" envDefault:"3"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env (when present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	prefixes := c.CommandPrefixes[:0]
	for _, p := range c.CommandPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return errors.New("COMMAND_PREFIXES must contain at least one prefix")
	}
	c.CommandPrefixes = prefixes

	if c.VoiceConnectTimeout <= 0 || c.VoicePlayingTimeout <= 0 {
		return errors.New("voice timeouts must be positive")
	}
	if c.VoiceReconnectAttempts < 0 {
		return errors.New("VOICE_RECONNECT_ATTEMPTS must not be negative")
	}
	c.DefaultLocale = strings.ToLower(strings.TrimSpace(c.DefaultLocale))
	return nil
}

// AIEnabled reports whether an AI provider can be built from this config.
func (c *Config) AIEnabled() bool {
	switch c.AIProvider {
	case "pollinations":
		return true
	default:
		return c.GeminiAPIKey != ""
	}
}
