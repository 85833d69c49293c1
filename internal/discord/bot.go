package discord

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/ai"
	commandscore "github.com/keshon/ilpo/internal/commands/core"
	"github.com/keshon/ilpo/internal/commands/music"
	"github.com/keshon/ilpo/internal/config"
	"github.com/keshon/ilpo/internal/core"
	"github.com/keshon/ilpo/internal/i18n"
	"github.com/keshon/ilpo/internal/music/parsers/kkdai"
	"github.com/keshon/ilpo/internal/music/player"
	"github.com/keshon/ilpo/internal/music/source_resolver"
	"github.com/keshon/ilpo/internal/music/stream"
	"github.com/keshon/ilpo/internal/playback"
	"github.com/keshon/ilpo/internal/storage"
)

// Options carries everything the bot is built from.
type Options struct {
	Config  *config.Config
	Storage *storage.Storage
	Catalog *i18n.Catalog
	// YouTube serves both stream parsing and metadata lookups.
	YouTube *kkdai.KKDAIStreamer
	// Songs is nil when AI suggestions are disabled.
	Songs *ai.SongService
}

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	storage  *storage.Storage
	catalog  *i18n.Catalog
	commands *core.Registry
	cache    commandCache

	voice    *Voice
	players  *player.Manager
	playback *playback.Coordinator

	mu       sync.Mutex
	channels map[string]textChannel
}

// textChannel is where a guild last used the bot, and in which locale.
type textChannel struct {
	id     string
	locale string
}

// New builds the bot and every playback component. Nothing connects until
// Run.
func New(opts Options) (*Bot, error) {
	dg, err := discordgo.New("Bot " + opts.Config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	registry := stream.NewRegistry(opts.YouTube)
	b := &Bot{
		dg:       dg,
		cfg:      opts.Config,
		storage:  opts.Storage,
		catalog:  opts.Catalog,
		commands: core.NewRegistry(),
		cache:    commandCache{dir: filepath.Join(filepath.Dir(opts.Config.StoragePath), "commands")},
		voice:    NewVoice(dg, registry),
		channels: make(map[string]textChannel),
	}

	b.players = player.NewManager(player.Config{
		Connector:   b.voice,
		Resolver:    source_resolver.New(&http.Client{Timeout: 30 * time.Second}, opts.YouTube),
		Describer:   opts.YouTube,
		Opener:      player.RecoveryOpener(registry),
		Store:       opts.Storage,
		JoinTimeout: opts.Config.VoiceConnectTimeout,
	})
	b.playback = playback.New(NewQueueBackend(b.players), b.voice, playback.Options{
		ConnectTimeout:    opts.Config.VoiceConnectTimeout,
		PlayingTimeout:    opts.Config.VoicePlayingTimeout,
		ReconnectAttempts: opts.Config.VoiceReconnectAttempts,
		ReconnectDelay:    time.Second,
		OnSessionEnd:      b.onSessionEnd,
	})

	// Last applied runs first: recover wraps logging wraps the guild check.
	mws := []core.Middleware{core.WithGuildOnly(), core.WithCommandLogger(), core.WithRecover()}
	music.Register(b.commands, music.Deps{
		Playback: b.playback,
		Catalog:  b.catalog,
		Songs:    opts.Songs,
	}, mws...)
	commandscore.Register(commandscore.Deps{
		Registry: b.commands,
		Catalog:  b.catalog,
		Prefixes: b.cfg.CommandPrefixes,
	}, mws...)

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onVoiceStateUpdate)
	return b, nil
}

// Run connects to the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.announceEvents(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received. Cleaning up...")

	b.playback.Shutdown()
	b.players.Shutdown()
	<-done
	return b.dg.Close()
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Discord bot is running")
}

// onGuildCreate fires for every guild at startup and when the bot joins one.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("Guild available")
	if !b.cfg.InitSlashCommands {
		log.Debug().Str("guild", g.ID).Msg("Registering slash commands skipped")
		return
	}
	go func() {
		if err := b.syncCommands(context.Background(), g.ID); err != nil {
			log.Error().Err(err).Str("guild", g.ID).Msg("Error registering slash commands")
		}
	}()
}

// onInteractionCreate dispatches slash commands.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	cmd, ok := b.commands.GetCommand(data.Name)
	if !ok {
		log.Warn().Str("command", data.Name).Msg("[Command] unknown slash command")
		return
	}

	ctx := &core.SlashInteractionContext{
		Base: core.Base{
			Session:   s,
			Storage:   b.storage,
			Catalog:   b.catalog,
			GuildID:   i.GuildID,
			ChannelID: i.ChannelID,
			User:      core.InteractionUser(i),
			Locale:    b.catalog.Normalize(string(i.Locale)),
			Reply:     core.NewSlashReplier(s, i.Interaction),
		},
		Event: i,
	}
	b.remember(ctx.GuildID, ctx.ChannelID, ctx.Locale)
	_ = cmd.Run(ctx)
}

// onMessageCreate dispatches prefixed commands.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	name, args, ok := core.ParsePrefix(m.Content, b.cfg.CommandPrefixes)
	if !ok {
		return
	}
	cmd, ok := b.commands.GetCommand(name)
	if !ok {
		return
	}

	ctx := &core.MessageContext{
		Base: core.Base{
			Session:   s,
			Storage:   b.storage,
			Catalog:   b.catalog,
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			User:      m.Author,
			Locale:    core.MessageLocale(b.catalog, name),
			Reply:     core.NewMessageReplier(s, m.Message),
		},
		Event:   m,
		Invoked: name,
		Args:    args,
	}
	b.remember(ctx.GuildID, ctx.ChannelID, ctx.Locale)
	_ = cmd.Run(ctx)
}

func (b *Bot) remember(guildID, channelID, locale string) {
	if guildID == "" || channelID == "" {
		return
	}
	b.mu.Lock()
	b.channels[guildID] = textChannel{id: channelID, locale: locale}
	b.mu.Unlock()
}

func (b *Bot) lastChannel(guildID string) textChannel {
	b.mu.Lock()
	defer b.mu.Unlock()
	tc, ok := b.channels[guildID]
	if !ok {
		tc.locale = b.catalog.Default()
	}
	return tc
}
