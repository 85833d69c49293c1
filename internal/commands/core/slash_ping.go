package core

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/core"
)

type PingCommand struct{ Deps }

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return c.describe("ping") }
func (c *PingCommand) Aliases() []string   { return c.Catalog.Aliases("ping") }
func (c *PingCommand) Group() string       { return group }
func (c *PingCommand) Category() string    { return category }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name())
}

func (c *PingCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	latency := "?"
	if b.Session != nil {
		latency = b.Session.HeartbeatLatency().Round(time.Millisecond).String()
	}
	return b.Reply.Text(b.T("pong", map[string]string{"latency": latency}))
}
