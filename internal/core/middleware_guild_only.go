package core

// WithGuildOnly rejects invocations outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if b, ok := BaseOf(ctx); ok && b.GuildID == "" {
					if b.Reply != nil {
						return b.Reply.Text(b.T("guild_only", nil))
					}
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}
