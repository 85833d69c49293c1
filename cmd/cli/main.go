// cmd/cli/main.go prints what the bot stored for a guild.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keshon/ilpo/internal/storage"
)

func main() {
	path := flag.String("storage", "data/datastore.json", "datastore file")
	guild := flag.String("guild", "", "guild ID; empty lists the stored guilds")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})

	store, err := storage.New(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("Could not open storage")
	}
	defer store.Close()

	if *guild == "" {
		for _, id := range store.Guilds() {
			fmt.Println(id)
		}
		return
	}

	if v, ok := store.Volume(*guild); ok {
		fmt.Printf("volume: %d%%\n\n", v)
	}

	history, err := store.FetchCommandHistory(*guild)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not read command history")
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tUSER\tCHANNEL\tCOMMAND\tPARAM")
	for _, r := range history {
		fmt.Fprintf(w, "%s\t%s\t#%s\t%s\t%s\n", r.Datetime.Format("2006-01-02 15:04"), r.Username, r.ChannelName, r.Command, r.Param)
	}
	w.Flush()
}
