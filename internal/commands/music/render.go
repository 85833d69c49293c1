package music

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/ilpo/internal/playback"
)

const embedColor = 0xFF0000

// Translator renders a catalog key.
type Translator func(key string, params map[string]string) string

// formatDuration prints m:ss or h:mm:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func trackLine(t playback.TrackView) string {
	line := "**" + t.Title + "**"
	if t.Author != "" {
		line += " - " + t.Author
	}
	return line
}

func durationText(t Translator, v playback.TrackView, direct bool) string {
	switch {
	case direct:
		return t("unknown", nil)
	case v.Live:
		return t("live", nil)
	}
	return formatDuration(v.Duration)
}

// QueueEmbed renders one page of the queue.
func QueueEmbed(t Translator, v playback.QueueView) *discordgo.MessageEmbed {
	e := embed.NewEmbed().SetColor(embedColor).SetTitle(t("queue_title", nil))

	current := t("queue_nothing", nil)
	if v.Current != nil {
		current = trackLine(*v.Current)
	}
	e.AddField(t("queue_now_playing", nil), current)

	if v.Direct {
		e.SetFooter(t("queue_direct_footer", nil))
		return e.MessageEmbed
	}

	var sb strings.Builder
	for i, tr := range v.Upcoming {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", v.Offset+i+1, trackLine(tr), durationText(t, tr, false))
	}
	list := strings.TrimSpace(sb.String())
	if list == "" {
		list = t("queue_empty", nil)
	}
	e.AddField(t("queue_title", nil), list)

	e.SetFooter(t("queue_footer", map[string]string{
		"page":     strconv.Itoa(v.Page),
		"pages":    strconv.Itoa(v.TotalPages),
		"count":    strconv.Itoa(v.Count),
		"duration": formatDuration(v.Total),
	}))
	return e.MessageEmbed
}

// NowPlayingEmbed renders the audible track.
func NowPlayingEmbed(t Translator, v playback.NowPlayingView) *discordgo.MessageEmbed {
	tr := v.Track
	e := embed.NewEmbed().SetColor(embedColor).SetTitle(t("np_title", nil))
	if tr.URL != "" {
		e.SetDescription(fmt.Sprintf("**[%s](%s)**", tr.Title, tr.URL))
	} else {
		e.SetDescription("**" + tr.Title + "**")
	}
	if tr.Thumbnail != "" {
		e.SetThumbnail(tr.Thumbnail)
	}

	if v.Direct {
		e.AddField(t("np_artist", nil), t("np_audio_file", nil))
	} else if tr.Author != "" {
		e.AddField(t("np_artist", nil), tr.Author)
	}
	e.AddField(t("np_duration", nil), durationText(t, tr, v.Direct))

	progress := durationText(t, tr, v.Direct)
	if !v.Direct && !tr.Live {
		progress = formatDuration(v.Position) + " / " + formatDuration(tr.Duration)
	}
	e.AddField(t("np_progress", nil), progress)

	volume := t("np_client_volume", nil)
	if v.VolumeSupported {
		volume = strconv.Itoa(v.Volume) + "%"
	}
	e.AddField(t("np_volume", nil), volume)

	state := t("np_playing", nil)
	if v.Paused {
		state = t("np_paused", nil)
	}
	if v.Reconnecting {
		state = t("reconnecting", nil)
	}
	e.AddField(t("np_state", nil), state)

	if tr.RequestedBy != "" {
		e.AddField(t("np_requested_by", nil), tr.RequestedBy)
	}
	e.InlineAllFields()
	return e.MessageEmbed
}
