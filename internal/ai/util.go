package ai

import (
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// statusError carries the HTTP status of a failed provider call.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.code }

func isGarbageResponse(s string) bool {
	l := strings.ToLower(s)

	if strings.Contains(l, "<html") {
		return true
	}
	if strings.Contains(l, "not allowed") {
		return true
	}
	if len(strings.TrimSpace(s)) < 5 {
		return true
	}
	return false
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

func cleanReply(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = thinkBlock.ReplaceAllString(reply, "")
	reply = strings.TrimSpace(reply)

	if len(reply) >= 2 {
		quotes := []struct{ open, close string }{
			{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"},
		}
		for _, q := range quotes {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) {
				reply = strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close)
				reply = strings.TrimSpace(reply)
				break
			}
		}
	}

	if len(reply) > 2800 {
		reply = reply[:2800] + "\n\n[truncated]"
	}

	return reply
}

// cleanSongName strips the decorations models like to add around a single
// "Artist - Song" line.
func cleanSongName(reply string) string {
	reply = cleanReply(reply)
	if i := strings.IndexByte(reply, '\n'); i >= 0 {
		reply = reply[:i]
	}
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "- ")
	reply = strings.TrimPrefix(reply, "* ")
	reply = strings.TrimPrefix(reply, "**")
	reply = strings.TrimSuffix(reply, "**")
	reply = strings.Trim(reply, `"'“”`)
	return strings.TrimSpace(reply)
}
