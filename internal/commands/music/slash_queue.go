package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/core"
)

type QueueCommand struct{ Deps }

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return c.describe("queue") }
func (c *QueueCommand) Aliases() []string   { return c.Catalog.Aliases("queue") }
func (c *QueueCommand) Group() string       { return group }
func (c *QueueCommand) Category() string    { return category }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name(),
		core.SlashOption(c.Catalog, discordgo.ApplicationCommandOptionInteger, "page", "cmd_queue_page", false),
	)
}

func (c *QueueCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	acknowledge(b)
	page, given, valid := intArg(ctx, "page")
	if !given || !valid {
		page = 1
	}

	view, res := c.Playback.QueueView(b.GuildID, page)
	if !res.Success {
		return reply(b, res)
	}
	return b.Reply.Embed(QueueEmbed(b.T, view))
}

type NowPlayingCommand struct{ Deps }

func (c *NowPlayingCommand) Name() string        { return "nowplaying" }
func (c *NowPlayingCommand) Description() string { return c.describe("nowplaying") }
func (c *NowPlayingCommand) Aliases() []string   { return c.Catalog.Aliases("nowplaying") }
func (c *NowPlayingCommand) Group() string       { return group }
func (c *NowPlayingCommand) Category() string    { return category }

func (c *NowPlayingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name())
}

func (c *NowPlayingCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	acknowledge(b)
	view, res := c.Playback.NowPlayingView(b.GuildID)
	if !res.Success {
		return reply(b, res)
	}
	return b.Reply.Embed(NowPlayingEmbed(b.T, view))
}
