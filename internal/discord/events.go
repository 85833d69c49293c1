package discord

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/music/player"
	"github.com/keshon/ilpo/internal/playback"
)

// eventMessages maps player statuses to announcement keys. Statuses that
// answer a command of their own are not announced.
var eventMessages = map[player.PlayerStatus]string{
	player.StatusAdded:     "event_added",
	player.StatusPlaying:   "event_playing",
	player.StatusFinished:  "event_finished",
	player.StatusLeftEmpty: "event_left_empty",
	player.StatusError:     "event_error",
}

// announceEvents relays player status changes to text channels until ctx
// is done.
func (b *Bot) announceEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.players.Events():
			if ev.Err != nil {
				log.Warn().Err(ev.Err).Str("guild", ev.GuildID).Str("status", string(ev.Status)).Msg("[Player] status error")
			}
			if key, params, ok := eventMessage(ev); ok {
				b.announce(ev.GuildID, ev.TextChannelID, key, params)
			}
		}
	}
}

// eventMessage picks the announcement of ev. A StatusAdded event covering
// several tracks announces their count.
func eventMessage(ev player.Event) (string, map[string]string, bool) {
	key, ok := eventMessages[ev.Status]
	if !ok {
		return "", nil, false
	}
	params := map[string]string{}
	if ev.Track != nil {
		params["title"] = ev.Track.Title
	}
	if ev.Status == player.StatusAdded && ev.Count > 1 {
		key = "event_added_many"
		params["count"] = strconv.Itoa(ev.Count)
	}
	return key, params, true
}

// onSessionEnd announces the end of a direct audio session that was not
// ended by a command.
func (b *Bot) onSessionEnd(guildID string, track playback.Track, reason playback.EndReason) {
	switch reason {
	case playback.EndFinished, playback.EndError, playback.EndDestroyed, playback.EndReconnectFailed:
		b.announce(guildID, "", "event_direct_ended", map[string]string{"title": track.Title})
	}
}

// announce sends a catalog message to channelID, or to the channel the guild
// last used the bot in.
func (b *Bot) announce(guildID, channelID, key string, params map[string]string) {
	last := b.lastChannel(guildID)
	if channelID == "" {
		channelID = last.id
	}
	if channelID == "" {
		log.Debug().Str("guild", guildID).Str("key", key).Msg("[Music] no channel to announce in")
		return
	}
	text := b.catalog.Text(last.locale, key, params)
	if _, err := b.dg.ChannelMessageSend(channelID, text); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Str("channel", channelID).Msg("[Music] announcement failed")
	}
}

// onVoiceStateUpdate routes the bot's own disconnects to its voice links
// and leaves channels nobody listens in anymore.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if s.State == nil || s.State.User == nil {
		return
	}
	self := s.State.User.ID

	if vs.UserID == self && vs.ChannelID == "" {
		if b.voice.Destroyed(vs.GuildID) {
			log.Info().Str("guild", vs.GuildID).Msg("[Voice] disconnected from voice")
			b.players.Delete(vs.GuildID)
		}
		return
	}

	channelID, ok := b.voice.ChannelOf(vs.GuildID)
	if !ok {
		return
	}
	if n := listeners(s, vs.GuildID, channelID, self); n != 0 {
		return
	}

	log.Info().Str("guild", vs.GuildID).Str("channel", channelID).Msg("[Voice] channel empty, leaving")
	if b.playback.Activity(vs.GuildID).Kind == playback.Direct {
		b.playback.Stop(vs.GuildID)
		b.announce(vs.GuildID, "", "event_left_empty", nil)
		return
	}
	b.players.LeaveEmpty(vs.GuildID)
}

// listeners counts the humans in channelID. It returns -1 when the guild is
// not cached, so nothing is left on missing state.
func listeners(s *discordgo.Session, guildID, channelID, self string) int {
	g, err := s.State.Guild(guildID)
	if err != nil {
		return -1
	}
	s.State.RLock()
	states := make([]*discordgo.VoiceState, len(g.VoiceStates))
	copy(states, g.VoiceStates)
	s.State.RUnlock()

	return countListeners(states, channelID, self, func(userID string) bool {
		m, err := s.State.Member(guildID, userID)
		return err == nil && m.User != nil && m.User.Bot
	})
}

func countListeners(states []*discordgo.VoiceState, channelID, self string, isBot func(userID string) bool) int {
	n := 0
	for _, st := range states {
		if st == nil || st.ChannelID != channelID || st.UserID == self {
			continue
		}
		if st.Member != nil && st.Member.User != nil && st.Member.User.Bot {
			continue
		}
		if isBot(st.UserID) {
			continue
		}
		n++
	}
	return n
}
