package core

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/i18n"
)

// DiscordLocales maps a catalog locale onto the Discord locales it covers.
func DiscordLocales(loc string) []discordgo.Locale {
	switch loc {
	case "en":
		return []discordgo.Locale{discordgo.EnglishUS, discordgo.EnglishGB}
	default:
		return []discordgo.Locale{discordgo.Locale(loc)}
	}
}

// Localizations renders key for every non-default locale in the form slash
// command definitions expect.
func Localizations(cat *i18n.Catalog, key string) map[discordgo.Locale]string {
	out := make(map[discordgo.Locale]string)
	for loc, text := range cat.Localizations(key) {
		for _, dl := range DiscordLocales(loc) {
			out[dl] = text
		}
	}
	return out
}

// SlashCommand builds a chat command whose descriptions come from the
// catalog key "cmd_<name>".
func SlashCommand(cat *i18n.Catalog, name string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	key := "cmd_" + name
	loc := Localizations(cat, key)
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              cat.Text(cat.Default(), key, nil),
		DescriptionLocalizations: &loc,
		Type:                     discordgo.ChatApplicationCommand,
		Options:                  options,
	}
}

// SlashOption builds an option described by the catalog key.
func SlashOption(cat *i18n.Catalog, typ discordgo.ApplicationCommandOptionType, name, key string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:                     typ,
		Name:                     name,
		Description:              cat.Text(cat.Default(), key, nil),
		DescriptionLocalizations: Localizations(cat, key),
		Required:                 required,
	}
}

// MessageLocale picks the reply locale of a prefixed command from the alias
// the user typed.
func MessageLocale(cat *i18n.Catalog, invoked string) string {
	if loc, ok := cat.LocaleForAlias(invoked); ok {
		return loc
	}
	return cat.Default()
}
