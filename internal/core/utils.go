package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ErrNotInVoice is returned when the invoking user is in no voice channel
// of the guild.
var ErrNotInVoice = errors.New("user is not in a voice channel")

func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	return fmt.Sprint(opt.Value)
}

func joinSpace(parts []string) string {
	return strings.Join(parts, " ")
}

// UserVoiceChannel finds the voice channel the user sits in, from the
// gateway state cache.
func UserVoiceChannel(s *discordgo.Session, guildID, userID string) (string, error) {
	if s == nil || s.State == nil {
		return "", ErrNotInVoice
	}
	vs, err := s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", ErrNotInVoice
	}
	return vs.ChannelID, nil
}

// DisplayName prefers the guild nickname, then the global name.
func DisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// InteractionUser returns the user behind an interaction in a guild or a DM.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i == nil || i.Interaction == nil {
		return nil
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
