// Package datastore keeps JSON documents by key in memory and persists them
// to a single file with periodic autosave, atomic writes and rotating
// backups.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("datastore is closed")

type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration
	// BackupCount is the number of previous file versions kept next to the
	// store; 0 disables backups.
	BackupCount int
	Logger      zerolog.Logger
}

func DefaultConfig(filePath string) *Config {
	return &Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
		Logger:           log.With().Str("component", "datastore").Logger(),
	}
}

type DataStore struct {
	cfg *Config

	mu     sync.RWMutex
	docs   map[string]json.RawMessage
	dirty  bool
	closed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New opens the store at filePath with the default configuration.
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig opens or creates the store file.
func NewWithConfig(cfg *Config) (*DataStore, error) {
	if cfg == nil || cfg.FilePath == "" {
		return nil, errors.New("datastore: file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	ds := &DataStore{cfg: cfg, docs: make(map[string]json.RawMessage)}
	switch data, err := os.ReadFile(cfg.FilePath); {
	case errors.Is(err, os.ErrNotExist):
		if err := writeAtomic(cfg.FilePath, []byte("{}")); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", cfg.FilePath, err)
	default:
		if err := json.Unmarshal(data, &ds.docs); err != nil {
			return nil, fmt.Errorf("invalid JSON in %s: %w", cfg.FilePath, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if cfg.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}
	return ds, nil
}

// Put stores value under key as JSON.
func (ds *DataStore) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	if !bytes.Equal(ds.docs[key], raw) {
		ds.docs[key] = raw
		ds.dirty = true
	}
	return nil
}

// Get decodes the document under key into out. It reports false when the
// key is absent.
func (ds *DataStore) Get(key string, out any) (bool, error) {
	ds.mu.RLock()
	raw, ok := ds.docs[key]
	closed := ds.closed
	ds.mu.RUnlock()

	if closed {
		return false, ErrClosed
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if _, ok := ds.docs[key]; ok && !ds.closed {
		delete(ds.docs, key)
		ds.dirty = true
	}
}

// Keys returns every stored key, sorted.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	keys := make([]string, 0, len(ds.docs))
	for k := range ds.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save writes pending changes to disk.
func (ds *DataStore) Save() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.flush()
}

// Close stops autosave and writes pending changes.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.flush()
}

func (ds *DataStore) flush() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.dirty {
		return nil
	}

	data, err := json.MarshalIndent(ds.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if ds.cfg.BackupCount > 0 {
		if err := ds.backup(); err != nil {
			ds.cfg.Logger.Warn().Err(err).Msg("Failed to create backup")
		}
	}
	if err := writeAtomic(ds.cfg.FilePath, data); err != nil {
		return err
	}
	ds.dirty = false
	return nil
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()
	ticker := time.NewTicker(ds.cfg.AutoSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.flush(); err != nil {
				ds.cfg.Logger.Error().Err(err).Msg("Auto-save failed")
			}
		}
	}
}

// writeAtomic replaces path with data through a synced temp file.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// backup copies the current file aside and prunes the oldest copies.
func (ds *DataStore) backup() error {
	current, err := os.ReadFile(ds.cfg.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s.backup.%s", ds.cfg.FilePath, time.Now().Format("20060102_150405.000"))
	if err := os.WriteFile(name, current, 0644); err != nil {
		return err
	}

	// The timestamp suffix sorts chronologically.
	matches, err := filepath.Glob(ds.cfg.FilePath + ".backup.*")
	if err != nil || len(matches) <= ds.cfg.BackupCount {
		return err
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-ds.cfg.BackupCount] {
		os.Remove(old)
	}
	return nil
}
