package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/ilpo/internal/config"
	"github.com/keshon/ilpo/internal/core"
)

const embedColor = 0xFF0000

type HelpCommand struct{ Deps }

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return c.describe("help") }
func (c *HelpCommand) Aliases() []string   { return c.Catalog.Aliases("help") }
func (c *HelpCommand) Group() string       { return group }
func (c *HelpCommand) Category() string    { return category }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return core.SlashCommand(c.Catalog, c.Name(),
		core.SlashOption(c.Catalog, discordgo.ApplicationCommandOptionString, "command", "cmd_help_command", false),
	)
}

func (c *HelpCommand) Run(ctx interface{}) error {
	b, ok := core.BaseOf(ctx)
	if !ok {
		return nil
	}

	var name string
	switch v := ctx.(type) {
	case *core.SlashInteractionContext:
		if opt, found := v.Option("command"); found {
			name = opt.StringValue()
		}
	case *core.MessageContext:
		if len(v.Args) > 0 {
			name = v.Args[0]
		}
	}
	name = strings.TrimSpace(name)

	if name == "" {
		return b.Reply.Embed(c.overview(b))
	}
	cmd, found := c.Registry.GetCommand(strings.TrimPrefix(name, "/"))
	if !found {
		return b.Reply.Text(b.T("help_unknown", map[string]string{"prefix": c.prefix()}))
	}
	return b.Reply.Embed(c.detail(b, cmd))
}

// overview lists every command grouped by category.
func (c *HelpCommand) overview(b *core.Base) *discordgo.MessageEmbed {
	byCategory := make(map[string][]core.Command)
	for _, cmd := range c.Registry.AllCommands() {
		byCategory[cmd.Category()] = append(byCategory[cmd.Category()], cmd)
	}
	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeights[cats[i]], config.CategoryWeights[cats[j]]
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	quoted := make([]string, len(c.Prefixes))
	for i, p := range c.Prefixes {
		quoted[i] = "`" + p + "`"
	}
	e := embed.NewEmbed().
		SetColor(embedColor).
		SetTitle(b.T("help_title", nil)).
		SetDescription(b.T("help_intro", map[string]string{"prefixes": strings.Join(quoted, ", ")}))

	for _, cat := range cats {
		var sb strings.Builder
		for _, cmd := range byCategory[cat] {
			fmt.Fprintf(&sb, "`%s` - %s\n", cmd.Name(), b.T("cmd_"+cmd.Name(), nil))
		}
		heading := b.T(cat, nil)
		if emoji := config.CategoryEmoji[cat]; emoji != "" {
			heading = emoji + " " + heading
		}
		e.AddField(heading, strings.TrimSpace(sb.String()))
	}

	e.AddField(b.T("help_audio_title", nil), b.T("help_audio", map[string]string{"prefix": c.prefix()}))
	e.SetFooter(b.T("help_footer", map[string]string{"prefix": c.prefix()}))
	return e.MessageEmbed
}

// detail describes one command.
func (c *HelpCommand) detail(b *core.Base, cmd core.Command) *discordgo.MessageEmbed {
	params := map[string]string{"prefix": c.prefix(), "name": cmd.Name()}
	e := embed.NewEmbed().
		SetColor(embedColor).
		SetTitle(b.T("help_command_title", params)).
		SetDescription(b.T("cmd_"+cmd.Name(), nil))

	e.AddField(b.T("help_usage", nil), "`"+c.prefix()+b.T("cmd_"+cmd.Name()+"_usage", nil)+"`")

	if aliases := cmd.Aliases(); len(aliases) > 0 {
		e.AddField(b.T("help_aliases", nil), "`"+strings.Join(aliases, "`, `")+"`")
	}
	examplesKey := "cmd_" + cmd.Name() + "_examples"
	if examples := b.T(examplesKey, params); examples != examplesKey {
		e.AddField(b.T("help_examples", nil), examples)
	}
	e.AddField(b.T("help_slash", nil), "`/"+cmd.Name()+"`")
	return e.MessageEmbed
}
