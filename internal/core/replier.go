package core

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Replier answers an invocation without caring whether it came from a slash
// command or a prefixed message. The first Text or Embed sends the reply,
// later calls edit it.
type Replier interface {
	// Defer acknowledges a slow command.
	Defer() error
	Text(content string) error
	Embed(embed *discordgo.MessageEmbed) error
}

// RESTClient is the part of *discordgo.Session the repliers use.
type RESTClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

type slashReplier struct {
	rest        RESTClient
	interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

// NewSlashReplier answers through the interaction's response.
func NewSlashReplier(rest RESTClient, interaction *discordgo.Interaction) Replier {
	return &slashReplier{rest: rest, interaction: interaction}
}

func (r *slashReplier) Defer() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responded {
		return nil
	}
	err := r.rest.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err == nil {
		r.responded = true
	}
	return err
}

func (r *slashReplier) Text(content string) error {
	return r.send(content, nil)
}

func (r *slashReplier) Embed(embed *discordgo.MessageEmbed) error {
	return r.send("", []*discordgo.MessageEmbed{embed})
}

func (r *slashReplier) send(content string, embeds []*discordgo.MessageEmbed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responded {
		if embeds == nil {
			embeds = []*discordgo.MessageEmbed{}
		}
		_, err := r.rest.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
			Content: &content,
			Embeds:  &embeds,
		})
		return err
	}
	err := r.rest.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
		},
	})
	if err == nil {
		r.responded = true
	}
	return err
}

type messageReplier struct {
	rest      RESTClient
	channelID string
	ref       *discordgo.MessageReference

	mu   sync.Mutex
	sent *discordgo.Message
}

// NewMessageReplier answers a prefixed command with a reply to msg.
func NewMessageReplier(rest RESTClient, msg *discordgo.Message) Replier {
	return &messageReplier{rest: rest, channelID: msg.ChannelID, ref: msg.Reference()}
}

func (r *messageReplier) Defer() error {
	return r.rest.ChannelTyping(r.channelID)
}

func (r *messageReplier) Text(content string) error {
	return r.send(content, nil)
}

func (r *messageReplier) Embed(embed *discordgo.MessageEmbed) error {
	return r.send("", []*discordgo.MessageEmbed{embed})
}

func (r *messageReplier) send(content string, embeds []*discordgo.MessageEmbed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent != nil {
		if embeds == nil {
			embeds = []*discordgo.MessageEmbed{}
		}
		_, err := r.rest.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:      r.sent.ID,
			Channel: r.sent.ChannelID,
			Content: &content,
			Embeds:  &embeds,
		})
		return err
	}
	msg, err := r.rest.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Content:         content,
		Embeds:          embeds,
		Reference:       r.ref,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		return err
	}
	r.sent = msg
	return nil
}
