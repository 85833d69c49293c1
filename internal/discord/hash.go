package discord

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// commandShape is the part of a slash definition Discord stores. IDs and
// versions assigned by Discord are left out so a fetched command hashes like
// the local one.
type commandShape struct {
	Name        string                           `json:"name"`
	Description string                           `json:"description"`
	Type        discordgo.ApplicationCommandType `json:"type"`
	Localized   map[discordgo.Locale]string      `json:"localized,omitempty"`
	Options     []optionShape                    `json:"options,omitempty"`
}

type optionShape struct {
	Name        string                                 `json:"name"`
	Description string                                 `json:"description"`
	Type        discordgo.ApplicationCommandOptionType `json:"type"`
	Required    bool                                   `json:"required"`
	Localized   map[discordgo.Locale]string            `json:"localized,omitempty"`
	MinValue    *float64                               `json:"min,omitempty"`
	MaxValue    float64                                `json:"max,omitempty"`
	Choices     []choiceShape                          `json:"choices,omitempty"`
	Options     []optionShape                          `json:"options,omitempty"`
}

type choiceShape struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// hashCommand fingerprints a slash definition, options in name order.
func hashCommand(cmd *discordgo.ApplicationCommand) string {
	shape := commandShape{
		Name:        cmd.Name,
		Description: cmd.Description,
		Type:        cmd.Type,
		Options:     optionShapes(cmd.Options),
	}
	if cmd.DescriptionLocalizations != nil && len(*cmd.DescriptionLocalizations) > 0 {
		shape.Localized = *cmd.DescriptionLocalizations
	}
	data, _ := json.Marshal(shape)
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func optionShapes(opts []*discordgo.ApplicationCommandOption) []optionShape {
	if len(opts) == 0 {
		return nil
	}
	out := make([]optionShape, 0, len(opts))
	for _, o := range opts {
		s := optionShape{
			Name:        o.Name,
			Description: o.Description,
			Type:        o.Type,
			Required:    o.Required,
			MinValue:    o.MinValue,
			MaxValue:    o.MaxValue,
			Options:     optionShapes(o.Options),
		}
		if len(o.DescriptionLocalizations) > 0 {
			s.Localized = o.DescriptionLocalizations
		}
		for _, c := range o.Choices {
			s.Choices = append(s.Choices, choiceShape{Name: c.Name, Value: c.Value})
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
