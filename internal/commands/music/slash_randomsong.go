package music

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/core"
)

type RandomSongCommand struct{ Deps }

func (c *RandomSongCommand) Name() string        { return "randomsong" }
func (c *RandomSongCommand) Description() string { return c.describe("randomsong") }
func (c *RandomSongCommand) Aliases() []string   { return c.Catalog.Aliases("randomsong") }
func (c *RandomSongCommand) Group() string       { return "ai" }
func (c *RandomSongCommand) Category() string    { return "category_ai" }

func (c *RandomSongCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name(),
		core.SlashOption(c.Catalog, discordgo.ApplicationCommandOptionString, "description", "cmd_randomsong_description", false),
	)
}

func (c *RandomSongCommand) Run(ctx interface{}) error {
	req, b, ok := playRequest(ctx)
	if !ok {
		return nil
	}
	// The query is the description here; no attachments are played.
	description := strings.TrimSpace(req.Query)
	if v, ok := ctx.(*core.SlashInteractionContext); ok {
		description = ""
		if opt, found := v.Option("description"); found {
			description = strings.TrimSpace(opt.StringValue())
		}
	}
	req.Attachments, req.Referenced = nil, nil

	if c.Songs == nil {
		return b.Reply.Text(b.T("ai_disabled", nil))
	}
	if req.VoiceChannelID == "" {
		return b.Reply.Text(b.T("not_in_voice", nil))
	}
	if err := b.Reply.Defer(); err != nil {
		return err
	}

	thinking := b.T("ai_thinking_random", nil)
	if description != "" {
		thinking = b.T("ai_thinking", map[string]string{"description": description})
	}
	if err := b.Reply.Text(thinking); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(context.Background(), 2*playTimeout)
	defer cancel()

	sug, err := c.Songs.Suggest(runCtx, description)
	if err != nil {
		log.Error().Err(err).Str("guild", b.GuildID).Msg("[AI] suggestion failed")
		return b.Reply.Text(b.T("ai_error", nil))
	}
	if err := b.Reply.Text(b.T("ai_suggested", map[string]string{"song": sug.Song})); err != nil {
		return err
	}

	req.Query = sug.Song
	res := c.Playback.Play(runCtx, req)
	params := map[string]string{"song": sug.Song, "message": render(b, res)}
	if !res.Success {
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("guild", b.GuildID).Str("song", sug.Song).Msg("[AI] suggested song failed to play")
		}
		return b.Reply.Text(b.T("ai_play_failed", params))
	}
	return b.Reply.Text(b.T("ai_played", params))
}
