package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/core"
	"github.com/keshon/ilpo/pkg/retrylimit"
)

// Discord allows a few command writes per second per guild; the limiter
// backs off further when it answers 429.
var commandLimiter = retrylimit.NewAdaptiveLimiter(4, 1, 20, 1, 0.5)

const maxCommandAttempts = 5

// restError lets retrylimit see Discord's HTTP status codes.
type restError struct{ err *discordgo.RESTError }

func (e restError) Error() string   { return e.err.Error() }
func (e restError) Unwrap() error   { return e.err }
func (e restError) StatusCode() int { return e.err.Response.StatusCode }

func wrapREST(err error) error {
	var re *discordgo.RESTError
	if errors.As(err, &re) && re.Response != nil {
		if re.Response.StatusCode >= 400 && re.Response.StatusCode < 500 && re.Response.StatusCode != http.StatusTooManyRequests {
			return retrylimit.Fatal(restError{re})
		}
		return restError{re}
	}
	return err
}

// definitions returns the slash definition of every registered command.
func definitions(r *core.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, cmd := range r.AllCommands() {
		slash, ok := cmd.(core.SlashProvider)
		if !ok {
			continue
		}
		if def := slash.SlashDefinition(); def != nil {
			if def.Type == 0 {
				def.Type = discordgo.ChatApplicationCommand
			}
			defs = append(defs, def)
		}
	}
	return defs
}

// commandDiff tells which definitions changed since the cached hashes and
// which existing commands are obsolete.
func commandDiff(wanted []*discordgo.ApplicationCommand, existing []*discordgo.ApplicationCommand, cached map[string]string) (changed, obsolete []*discordgo.ApplicationCommand, hashes map[string]string) {
	hashes = make(map[string]string, len(wanted))
	present := make(map[string]bool, len(existing))
	for _, ex := range existing {
		present[ex.Name] = true
	}
	for _, def := range wanted {
		h := hashCommand(def)
		hashes[def.Name] = h
		if cached[def.Name] != h || !present[def.Name] {
			changed = append(changed, def)
		}
	}
	for _, ex := range existing {
		if _, ok := hashes[ex.Name]; !ok {
			obsolete = append(obsolete, ex)
		}
	}
	return changed, obsolete, hashes
}

// syncCommands registers the guild's slash commands, sending only the
// definitions that changed since the last run.
func (b *Bot) syncCommands(ctx context.Context, guildID string) error {
	appID := b.dg.State.User.ID
	existing, err := b.dg.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("list commands: %w", err)
	}

	cached := b.cache.load(guildID)
	changed, obsolete, hashes := commandDiff(definitions(b.commands), existing, cached)

	for _, old := range obsolete {
		log.Info().Str("guild", guildID).Str("command", old.Name).Msg("Deleting obsolete command")
		err := retrylimit.WithRetryMax(ctx, func() error {
			return wrapREST(b.dg.ApplicationCommandDelete(appID, guildID, old.ID, discordgo.WithContext(ctx)))
		}, commandLimiter, maxCommandAttempts)
		if err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", old.Name).Msg("Failed to delete command")
		}
	}

	if len(changed) > 0 {
		log.Info().Str("guild", guildID).Int("changed", len(changed)).Msg("Updating slash commands")
	}
	for _, def := range changed {
		err := retrylimit.WithRetryMax(ctx, func() error {
			_, err := b.dg.ApplicationCommandCreate(appID, guildID, def, discordgo.WithContext(ctx))
			return wrapREST(err)
		}, commandLimiter, maxCommandAttempts)
		if err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", def.Name).Msg("Can't create command")
			delete(hashes, def.Name)
			continue
		}
		log.Debug().Str("guild", guildID).Str("command", def.Name).Msg("Command created")
	}

	b.cache.save(guildID, hashes)
	return nil
}
