package discord

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// commandCache remembers the hash of every slash command registered per
// guild, so unchanged definitions are not sent again.
type commandCache struct {
	dir string
}

func (c commandCache) path(guildID string) string {
	return filepath.Join(c.dir, guildID+".json")
}

func (c commandCache) load(guildID string) map[string]string {
	data := make(map[string]string)
	file, err := os.ReadFile(c.path(guildID))
	if err == nil {
		_ = json.Unmarshal(file, &data)
	}
	return data
}

func (c commandCache) save(guildID string, hashes map[string]string) {
	path := c.path(guildID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Could not create command cache dir")
		return
	}
	data, _ := json.MarshalIndent(hashes, "", "  ")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Could not write command cache")
	}
}
