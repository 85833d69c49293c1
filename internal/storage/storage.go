// /internal/storage/storage.go
package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/keshon/ilpo/datastore"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
	mu sync.Mutex
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	Volume              *int                   `json:"volume,omitempty"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// Guilds lists every guild with a stored record.
func (s *Storage) Guilds() []string {
	return s.ds.Keys()
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	record := &Record{CommandsHistoryList: []CommandHistoryRecord{}}
	if _, err := s.ds.Get(guildID, record); err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}
	return record, nil
}

func (s *Storage) update(guildID string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)
	return s.ds.Put(guildID, record)
}

// AppendCommandToHistory appends a command history record for a guild
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	return s.update(guildID, func(r *Record) {
		r.CommandsHistoryList = append(r.CommandsHistoryList, command)
		if len(r.CommandsHistoryList) > commandHistoryLimit {
			r.CommandsHistoryList = r.CommandsHistoryList[len(r.CommandsHistoryList)-commandHistoryLimit:]
		}
	})
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}
