package core

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/storage"
)

// WithCommandLogger logs every execution and appends it to the guild's
// command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				start := time.Now()
				err := cmd.Run(ctx)

				b, ok := BaseOf(ctx)
				if !ok {
					return err
				}
				rec := storage.CommandHistoryRecord{
					ChannelID: b.ChannelID,
					Command:   cmd.Name(),
					Param:     Param(ctx),
					Datetime:  start.UTC(),
				}
				if b.User != nil {
					rec.UserID = b.User.ID
					rec.Username = b.User.Username
				}
				if b.Session != nil && b.Session.State != nil {
					if ch, e := b.Session.State.Channel(b.ChannelID); e == nil {
						rec.ChannelName = ch.Name
					}
					if g, e := b.Session.State.Guild(b.GuildID); e == nil {
						rec.GuildName = g.Name
					}
				}

				log.Info().
					Str("guild", b.GuildID).
					Str("channel", b.ChannelID).
					Str("user", rec.Username).
					Str("command", rec.Command).
					Str("param", rec.Param).
					Dur("took", time.Since(start)).
					Msg("[Command] executed")

				if b.Storage != nil && b.GuildID != "" {
					if e := b.Storage.AppendCommandToHistory(b.GuildID, rec); e != nil {
						log.Warn().Err(e).Str("command", rec.Command).Msg("[Command] failed to store history")
					}
				}
				return err
			},
		}
	}
}
