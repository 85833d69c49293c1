package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/core"
)

type StopCommand struct{ Deps }

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return c.describe("stop") }
func (c *StopCommand) Aliases() []string   { return c.Catalog.Aliases("stop") }
func (c *StopCommand) Group() string       { return group }
func (c *StopCommand) Category() string    { return category }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name())
}

func (c *StopCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	acknowledge(b)
	return reply(b, c.Playback.Stop(b.GuildID))
}

type PauseCommand struct{ Deps }

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return c.describe("pause") }
func (c *PauseCommand) Aliases() []string   { return c.Catalog.Aliases("pause") }
func (c *PauseCommand) Group() string       { return group }
func (c *PauseCommand) Category() string    { return category }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name())
}

func (c *PauseCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	acknowledge(b)
	return reply(b, c.Playback.Pause(b.GuildID))
}

type ResumeCommand struct{ Deps }

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return c.describe("resume") }
func (c *ResumeCommand) Aliases() []string   { return c.Catalog.Aliases("resume") }
func (c *ResumeCommand) Group() string       { return group }
func (c *ResumeCommand) Category() string    { return category }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name())
}

func (c *ResumeCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	acknowledge(b)
	return reply(b, c.Playback.Resume(b.GuildID))
}

type SkipCommand struct{ Deps }

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return c.describe("skip") }
func (c *SkipCommand) Aliases() []string   { return c.Catalog.Aliases("skip") }
func (c *SkipCommand) Group() string       { return group }
func (c *SkipCommand) Category() string    { return category }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name())
}

func (c *SkipCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	acknowledge(b)
	return reply(b, c.Playback.Skip(b.GuildID))
}

type VolumeCommand struct{ Deps }

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return c.describe("volume") }
func (c *VolumeCommand) Aliases() []string   { return c.Catalog.Aliases("volume") }
func (c *VolumeCommand) Group() string       { return group }
func (c *VolumeCommand) Category() string    { return category }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name(),
		core.SlashOption(c.Catalog, discordgo.ApplicationCommandOptionInteger, "level", "cmd_volume_level", false),
	)
}

func (c *VolumeCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	acknowledge(b)
	n, given, valid := intArg(ctx, "level")
	var level *int
	switch {
	case !given:
	case !valid:
		// Not a number; let the coordinator report the range.
		bad := -1
		level = &bad
	default:
		level = &n
	}
	return reply(b, c.Playback.Volume(b.GuildID, level))
}
