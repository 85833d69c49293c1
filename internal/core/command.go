package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/i18n"
	"github.com/keshon/ilpo/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// Providers - how this command should be registered with Discord
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Base is what every context carries, whichever way the command came in.
type Base struct {
	Session   *discordgo.Session
	Storage   *storage.Storage
	Catalog   *i18n.Catalog
	GuildID   string
	ChannelID string
	User      *discordgo.User
	Locale    string
	Reply     Replier
}

// T renders a catalog message in the invocation's locale.
func (b *Base) T(key string, params map[string]string) string {
	if b.Catalog == nil {
		return key
	}
	return b.Catalog.Text(b.Locale, key, params)
}

// Slash command
type SlashInteractionContext struct {
	Base
	Event *discordgo.InteractionCreate
}

// Option returns the named top-level option of the slash command.
func (c *SlashInteractionContext) Option(name string) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	if c.Event == nil || c.Event.Type != discordgo.InteractionApplicationCommand {
		return nil, false
	}
	for _, opt := range c.Event.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return nil, false
}

// Message
type MessageContext struct {
	Base
	Event *discordgo.MessageCreate
	// Invoked is the name or alias the user typed, lower-cased.
	Invoked string
	Args    []string
}

// BaseOf returns the shared part of a command context.
func BaseOf(ctx interface{}) (*Base, bool) {
	switch v := ctx.(type) {
	case *SlashInteractionContext:
		return &v.Base, true
	case *MessageContext:
		return &v.Base, true
	}
	return nil, false
}

// Param describes how a command is invoked, for help and history.
func Param(ctx interface{}) string {
	switch v := ctx.(type) {
	case *SlashInteractionContext:
		if v.Event == nil || v.Event.Type != discordgo.InteractionApplicationCommand {
			return ""
		}
		var parts []string
		for _, opt := range v.Event.ApplicationCommandData().Options {
			parts = append(parts, opt.Name+"="+optionString(opt))
		}
		return joinSpace(parts)
	case *MessageContext:
		return joinSpace(v.Args)
	}
	return ""
}
