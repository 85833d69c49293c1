// Package i18n holds the user-facing messages and the locale-flavoured
// prefix aliases of every command.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

type locale struct {
	Messages map[string]string   `yaml:"messages"`
	Aliases  map[string][]string `yaml:"aliases"`
}

// Catalog resolves message keys per locale.
type Catalog struct {
	def     string
	locales map[string]*locale
	aliases map[string]string // alias -> locale
}

// Load reads the embedded catalogs. defaultLocale must be one of them.
func Load(defaultLocale string) (*Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	sources := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		sources[strings.TrimSuffix(e.Name(), ".yaml")] = data
	}
	return Parse(defaultLocale, sources)
}

// Parse builds a catalog from raw YAML documents keyed by locale name.
func Parse(defaultLocale string, sources map[string][]byte) (*Catalog, error) {
	c := &Catalog{
		def:     strings.ToLower(defaultLocale),
		locales: make(map[string]*locale, len(sources)),
		aliases: make(map[string]string),
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var l locale
		if err := yaml.Unmarshal(sources[name], &l); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}
		c.locales[name] = &l
		for _, list := range l.Aliases {
			for _, a := range list {
				a = strings.ToLower(a)
				if owner, ok := c.aliases[a]; ok && owner != name {
					return nil, fmt.Errorf("alias %q defined by both %s and %s", a, owner, name)
				}
				c.aliases[a] = name
			}
		}
	}

	if _, ok := c.locales[c.def]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", defaultLocale)
	}
	return c, nil
}

// Default returns the fallback locale.
func (c *Catalog) Default() string { return c.def }

// Locales returns the loaded locale names, sorted.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.locales))
	for name := range c.locales {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Normalize maps a client locale such as "fi" or "en-US" onto a loaded
// catalog, falling back to the default.
func (c *Catalog) Normalize(clientLocale string) string {
	l := strings.ToLower(clientLocale)
	if _, ok := c.locales[l]; ok {
		return l
	}
	if i := strings.IndexAny(l, "-_"); i > 0 {
		if _, ok := c.locales[l[:i]]; ok {
			return l[:i]
		}
	}
	return c.def
}

// Text renders key in the given locale. Missing keys fall back to the
// default locale and then to the key itself. Placeholders look like {name}.
func (c *Catalog) Text(loc, key string, params map[string]string) string {
	msg, ok := c.lookup(loc, key)
	if !ok {
		msg, ok = c.lookup(c.def, key)
	}
	if !ok {
		msg = key
	}
	if len(params) == 0 {
		return msg
	}

	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func (c *Catalog) lookup(loc, key string) (string, bool) {
	l, ok := c.locales[loc]
	if !ok {
		return "", false
	}
	msg, ok := l.Messages[key]
	return msg, ok
}

// Aliases returns the aliases of command across every locale, default
// locale first.
func (c *Catalog) Aliases(command string) []string {
	var out []string
	if l, ok := c.locales[c.def]; ok {
		out = append(out, l.Aliases[command]...)
	}
	for _, name := range c.Locales() {
		if name == c.def {
			continue
		}
		out = append(out, c.locales[name].Aliases[command]...)
	}
	return out
}

// LocaleForAlias reports which locale defines alias.
func (c *Catalog) LocaleForAlias(alias string) (string, bool) {
	l, ok := c.aliases[strings.ToLower(alias)]
	return l, ok
}

// Localizations returns key rendered in every non-default locale, keyed by
// locale name.
func (c *Catalog) Localizations(key string) map[string]string {
	out := make(map[string]string)
	for name := range c.locales {
		if name == c.def {
			continue
		}
		if msg, ok := c.lookup(name, key); ok {
			out[name] = msg
		}
	}
	return out
}
