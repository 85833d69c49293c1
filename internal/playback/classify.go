package playback

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
)

// Kind is the playback path chosen for a request.
type Kind int

const (
	KindQueued Kind = iota
	KindDirect
)

// Classification is the outcome of Classify.
type Classification struct {
	Kind     Kind
	URL      string
	Filename string
	Query    string
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".opus": true,
	".aac":  true,
	".webm": true,
}

// IsAudio reports whether the attachment looks like an audio file.
func IsAudio(a Attachment) bool {
	if strings.HasPrefix(strings.ToLower(a.ContentType), "audio/") {
		return true
	}
	return audioExtensions[strings.ToLower(path.Ext(attachmentName(a)))]
}

// attachmentName is the filename, or the last segment of the URL path
// without its query string.
func attachmentName(a Attachment) string {
	if a.Filename != "" {
		return a.Filename
	}
	u, err := url.Parse(a.URL)
	if err != nil || u.Path == "" {
		return ""
	}
	return path.Base(u.Path)
}

func firstAudio(list []Attachment) (Attachment, bool) {
	for _, a := range list {
		if a.URL != "" && IsAudio(a) {
			return a, true
		}
	}
	return Attachment{}, false
}

// Classify picks the playback path for req. Audio on the message wins over
// audio on the replied-to message, which wins over the text query.
func (c *Coordinator) Classify(ctx context.Context, req Request) (Classification, Result) {
	return classify(ctx, req)
}

func classify(ctx context.Context, req Request) (Classification, Result) {
	if a, ok := firstAudio(req.Attachments); ok {
		return direct(a), classified()
	}

	if req.Referenced != nil {
		refs, err := req.Referenced(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("guild", req.GuildID).Msg("[Playback] Could not load referenced message")
		default:
			if a, ok := firstAudio(refs); ok {
				return direct(a), classified()
			}
		}
	}

	if q := strings.TrimSpace(req.Query); q != "" {
		return Classification{Kind: KindQueued, Query: q}, classified()
	}
	return Classification{}, fail(CodeNoContent, errors.New("no playable content supplied"), nil)
}

func direct(a Attachment) Classification {
	return Classification{Kind: KindDirect, URL: a.URL, Filename: attachmentName(a)}
}

func classified() Result { return Result{Success: true} }
