// cmd/discord/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/ai"
	"github.com/keshon/ilpo/internal/config"
	"github.com/keshon/ilpo/internal/discord"
	"github.com/keshon/ilpo/internal/i18n"
	"github.com/keshon/ilpo/internal/logging"
	"github.com/keshon/ilpo/internal/music/parsers/kkdai"
	"github.com/keshon/ilpo/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Discord bot error")
	}
	log.Info().Msg("Discord bot exited cleanly")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if closer := logging.Setup(cfg.LogLevel, cfg.LogFile); closer != nil {
		defer closer.Close()
	}
	log.Info().Msg("Starting Ilpo bot...")

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	catalog, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return err
	}

	songs, err := songService(cfg)
	if err != nil {
		return err
	}

	bot, err := discord.New(discord.Options{
		Config:  cfg,
		Storage: store,
		Catalog: catalog,
		YouTube: kkdai.New(cfg.YouTubeProxy),
		Songs:   songs,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return bot.Run(ctx)
}

// songService returns nil when no AI provider is configured.
func songService(cfg *config.Config) (*ai.SongService, error) {
	provider, err := ai.NewProvider(cfg)
	if errors.Is(err, ai.ErrNotConfigured) {
		log.Warn().Err(err).Msg("[AI] song suggestions disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", cfg.AIProvider).Msg("[AI] song suggestions enabled")
	return ai.NewSongService(provider)
}
