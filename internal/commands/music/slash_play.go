package music

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/core"
)

type PlayCommand struct{ Deps }

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return c.describe("play") }
func (c *PlayCommand) Aliases() []string   { return c.Catalog.Aliases("play") }
func (c *PlayCommand) Group() string       { return group }
func (c *PlayCommand) Category() string    { return category }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name(),
		core.SlashOption(c.Catalog, discordgo.ApplicationCommandOptionString, "query", "cmd_play_query", false),
		core.SlashOption(c.Catalog, discordgo.ApplicationCommandOptionAttachment, "file", "cmd_play_file", false),
	)
}

func (c *PlayCommand) Run(ctx interface{}) error {
	req, b, ok := playRequest(ctx)
	if !ok {
		return nil
	}
	if req.VoiceChannelID == "" {
		return b.Reply.Text(b.T("not_in_voice", nil))
	}
	if err := b.Reply.Defer(); err != nil {
		return err
	}

	playCtx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()
	return reply(b, c.Playback.Play(playCtx, req))
}
