package music

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/ai"
	"github.com/keshon/ilpo/internal/core"
	"github.com/keshon/ilpo/internal/i18n"
	"github.com/keshon/ilpo/internal/playback"
)

const (
	group    = "music"
	category = "category_music"

	// playTimeout bounds resolving, joining and starting one play request.
	playTimeout = 45 * time.Second
)

// Deps are shared by every music command.
type Deps struct {
	Playback *playback.Coordinator
	Catalog  *i18n.Catalog
	// Songs is nil when no AI provider is configured.
	Songs *ai.SongService
}

func (d Deps) describe(name string) string {
	return d.Catalog.Text(d.Catalog.Default(), "cmd_"+name, nil)
}

// Register adds the music commands to r behind the given middlewares.
func Register(r *core.Registry, d Deps, mws ...core.Middleware) {
	for _, cmd := range []core.Command{
		&PlayCommand{d},
		&StopCommand{d},
		&PauseCommand{d},
		&ResumeCommand{d},
		&SkipCommand{d},
		&QueueCommand{d},
		&NowPlayingCommand{d},
		&VolumeCommand{d},
		&RandomSongCommand{d},
	} {
		r.RegisterCommand(core.ApplyMiddlewares(cmd, mws...))
	}
}

// acknowledge defers the reply so a command waiting on a busy guild still
// answers the interaction in time. A failed defer is not fatal; the reply
// itself reports any delivery problem.
func acknowledge(b *core.Base) {
	if err := b.Reply.Defer(); err != nil {
		log.Warn().Err(err).Str("guild", b.GuildID).Msg("[Music] defer failed")
	}
}

// reply renders a coordinator result in the invocation's locale.
func reply(b *core.Base, res playback.Result) error {
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("guild", b.GuildID).Str("code", string(res.Code)).Msg("[Music] request failed")
	}
	return b.Reply.Text(render(b, res))
}

func render(b *core.Base, res playback.Result) string {
	return b.T(string(res.Code), res.Params)
}

func requester(b *core.Base, member *discordgo.Member) playback.Requester {
	if b.User == nil {
		return playback.Requester{}
	}
	return playback.Requester{ID: b.User.ID, Name: core.DisplayName(member, b.User)}
}

// playRequest collects everything the coordinator needs to play from a slash
// command or a prefixed message.
func playRequest(ctx interface{}) (playback.Request, *core.Base, bool) {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return playback.Request{}, nil, false
	}
	req := playback.Request{
		GuildID:       b.GuildID,
		TextChannelID: b.ChannelID,
	}
	if b.User != nil {
		req.VoiceChannelID, _ = core.UserVoiceChannel(b.Session, b.GuildID, b.User.ID)
	}

	switch v := ctx.(type) {
	case *core.SlashInteractionContext:
		req.RequestedBy = requester(b, v.Event.Member)
		if opt, ok := v.Option("query"); ok {
			req.Query = opt.StringValue()
		}
		if opt, ok := v.Option("file"); ok {
			if a := resolvedAttachment(v.Event, opt); a != nil {
				req.Attachments = []playback.Attachment{attachment(a)}
			}
		}
	case *core.MessageContext:
		req.RequestedBy = requester(b, v.Event.Member)
		req.Query = strings.Join(v.Args, " ")
		req.Attachments = attachments(v.Event.Attachments)
		if v.Event.MessageReference != nil {
			req.Referenced = referenced(b.Session, v.Event.Message)
		}
	}
	return req, b, true
}

func resolvedAttachment(i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageAttachment {
	data := i.ApplicationCommandData()
	if data.Resolved == nil {
		return nil
	}
	id, _ := opt.Value.(string)
	return data.Resolved.Attachments[id]
}

func attachment(a *discordgo.MessageAttachment) playback.Attachment {
	return playback.Attachment{Filename: a.Filename, ContentType: a.ContentType, URL: a.URL}
}

func attachments(list []*discordgo.MessageAttachment) []playback.Attachment {
	out := make([]playback.Attachment, 0, len(list))
	for _, a := range list {
		if a != nil {
			out = append(out, attachment(a))
		}
	}
	return out
}

// referenced loads the attachments of the message m replies to.
func referenced(s *discordgo.Session, m *discordgo.Message) func(context.Context) ([]playback.Attachment, error) {
	return func(ctx context.Context) ([]playback.Attachment, error) {
		if m.ReferencedMessage != nil {
			return attachments(m.ReferencedMessage.Attachments), nil
		}
		ref := m.MessageReference
		msg, err := s.ChannelMessage(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		return attachments(msg.Attachments), nil
	}
}

// intArg reads an integer from the named slash option or the first prefix
// argument. ok is false when the argument is absent.
func intArg(ctx interface{}, option string) (n int, ok bool, valid bool) {
	switch v := ctx.(type) {
	case *core.SlashInteractionContext:
		opt, found := v.Option(option)
		if !found {
			return 0, false, true
		}
		return int(opt.IntValue()), true, true
	case *core.MessageContext:
		if len(v.Args) == 0 {
			return 0, false, true
		}
		n, err := strconv.Atoi(v.Args[0])
		return n, true, err == nil
	}
	return 0, false, true
}
