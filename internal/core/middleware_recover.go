package core

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// WithRecover is the outermost boundary of a command: panics and errors are
// logged and turned into a generic failure reply. It never returns an error.
func WithRecover() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("panic: %v", r)
						log.Error().Str("command", cmd.Name()).Str("stack", string(debug.Stack())).Msgf("[Command] recovered from %v", r)
					}
					if err != nil {
						replyFailure(ctx, cmd.Name(), err)
					}
					err = nil
				}()
				return cmd.Run(ctx)
			},
		}
	}
}

func replyFailure(ctx interface{}, name string, err error) {
	log.Error().Err(err).Str("command", name).Msg("[Command] failed")
	b, ok := BaseOf(ctx)
	if !ok || b.Reply == nil {
		return
	}
	if e := b.Reply.Text(b.T("error_generic", nil)); e != nil {
		log.Warn().Err(e).Str("command", name).Msg("[Command] failed to send failure reply")
	}
}
