package music

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/ilpo/internal/core"
	"github.com/keshon/ilpo/internal/i18n"
	"github.com/keshon/ilpo/internal/playback"
)

// orderReplier records the order of reply calls.
type orderReplier struct {
	calls []string
}

func (r *orderReplier) Defer() error {
	r.calls = append(r.calls, "defer")
	return nil
}

func (r *orderReplier) Text(string) error {
	r.calls = append(r.calls, "text")
	return nil
}

func (r *orderReplier) Embed(*discordgo.MessageEmbed) error {
	r.calls = append(r.calls, "embed")
	return nil
}

func TestControlCommandsDeferFirst(t *testing.T) {
	cat, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	d := Deps{Playback: playback.New(nil, nil, playback.Options{}), Catalog: cat}
	defer d.Playback.Shutdown()

	for _, cmd := range []core.Command{
		&StopCommand{d},
		&PauseCommand{d},
		&ResumeCommand{d},
		&SkipCommand{d},
		&VolumeCommand{d},
		&QueueCommand{d},
		&NowPlayingCommand{d},
	} {
		t.Run(cmd.Name(), func(t *testing.T) {
			r := &orderReplier{}
			ctx := &core.MessageContext{
				Base: core.Base{Catalog: cat, GuildID: "g1", ChannelID: "c1", Locale: "en", Reply: r},
			}
			if err := cmd.Run(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(r.calls) != 2 {
				t.Fatalf("expected defer then one reply, got %v", r.calls)
			}
			if r.calls[0] != "defer" {
				t.Errorf("expected defer first, got %v", r.calls)
			}
		})
	}
}
