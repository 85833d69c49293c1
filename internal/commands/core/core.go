package core

import (
	"github.com/keshon/ilpo/internal/core"
	"github.com/keshon/ilpo/internal/i18n"
)

const (
	group    = "core"
	category = "category_info"
)

// Deps are shared by the information commands.
type Deps struct {
	Registry *core.Registry
	Catalog  *i18n.Catalog
	Prefixes []string
}

func (d Deps) describe(name string) string {
	return d.Catalog.Text(d.Catalog.Default(), "cmd_"+name, nil)
}

func (d Deps) prefix() string {
	if len(d.Prefixes) == 0 {
		return "/"
	}
	return d.Prefixes[0]
}

// Register adds the information commands to d.Registry.
func Register(d Deps, mws ...core.Middleware) {
	for _, cmd := range []core.Command{
		&HelpCommand{d},
		&UserCommand{d},
		&PingCommand{d},
	} {
		d.Registry.RegisterCommand(core.ApplyMiddlewares(cmd, mws...))
	}
}
