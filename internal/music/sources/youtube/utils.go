package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var youtubeRegex = regexp.MustCompile(`(?:https?:\/\/)?(?:www\.|music\.|m\.)?(youtube\.com|youtu\.be)\/\S+`)

func isYouTubeURL(input string) bool {
	return youtubeRegex.MatchString(input)
}

func isYouTubeVideoURL(s string) bool {
	return strings.Contains(s, "youtube.com/watch?v=") ||
		strings.Contains(s, "youtube.com/shorts/") ||
		strings.Contains(s, "youtu.be/")
}

// isYouTubePlaylistURL reports a playlist page link. A watch link that
// carries a list parameter still plays only its video.
func isYouTubePlaylistURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "www.youtube.com", "youtube.com", "music.youtube.com", "m.youtube.com":
		return u.Path == "/playlist" && u.Query().Get("list") != ""
	}
	return false
}

// CleanVideoURL strips everything but the video id from a YouTube link.
func CleanVideoURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := u.Hostname()

	switch host {
	case "youtu.be":
		vid := strings.Trim(u.Path, "/")
		if vid == "" {
			return raw
		}
		return fmt.Sprintf("https://youtu.be/%s", vid)

	case "www.youtube.com", "youtube.com", "music.youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			if vid := u.Query().Get("v"); vid != "" {
				return fmt.Sprintf("https://www.youtube.com/watch?v=%s", vid)
			}
		}
		if vid, ok := strings.CutPrefix(u.Path, "/shorts/"); ok && vid != "" {
			return fmt.Sprintf("https://www.youtube.com/watch?v=%s", strings.Trim(vid, "/"))
		}
		return raw

	default:
		return raw
	}
}
