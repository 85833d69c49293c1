package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/core"
)

type UserCommand struct{ Deps }

func (c *UserCommand) Name() string        { return "user" }
func (c *UserCommand) Description() string { return c.describe("user") }
func (c *UserCommand) Aliases() []string   { return c.Catalog.Aliases("user") }
func (c *UserCommand) Group() string       { return group }
func (c *UserCommand) Category() string    { return category }

func (c *UserCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name())
}

func (c *UserCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}
	var member *discordgo.Member
	switch v := ctx.(type) {
	case *core.SlashInteractionContext:
		member = v.Event.Member
	case *core.MessageContext:
		member = v.Event.Member
	}
	return b.Reply.Text(userInfo(b, member))
}

func userInfo(b *core.Base, member *discordgo.Member) string {
	joined := b.T("user_unknown_join", nil)
	if member != nil && !member.JoinedAt.IsZero() {
		joined = member.JoinedAt.UTC().Format("2006-01-02")
	}
	return b.T("user_info", map[string]string{
		"name":   core.DisplayName(member, b.User),
		"joined": joined,
	})
}
