package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"
)

// RetentionWindow is how long unnamed history entries are kept, measured
// from their first-seen timestamp. Named entries never expire.
const RetentionWindow = 30 * 24 * time.Hour

// fileLayout is the on-disk shape: two address-keyed maps, rewritten
// wholesale on every mutation. First-seen timestamps are string-encoded
// epoch milliseconds.
type fileLayout struct {
	FirstSeen   map[string]string `json:"firstSeen"`
	CustomNames map[string]string `json:"customNames"`
}

// FileStore is a JSON-file-backed history store. It implements
// ports.HistoryStore. A missing or unreadable file degrades to an empty
// history; write failures are logged and never surfaced to the merge path.
type FileStore struct {
	path        string
	mu          sync.RWMutex
	firstSeen   map[string]int64
	customNames map[string]string
}

// NewFileStore loads (or initializes) the history file at path.
func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path:        path,
		firstSeen:   make(map[string]int64),
		customNames: make(map[string]string),
	}
	if err := s.load(); err != nil {
		slog.Error("could not load device history, starting empty", "path", path, "error", err)
	}
	return s
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var layout fileLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("malformed history file: %w", err)
	}

	for mac, raw := range layout.FirstSeen {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			slog.Warn("skipping malformed first-seen entry", "mac", mac, "value", raw)
			continue
		}
		s.firstSeen[mac] = ts
	}
	for mac, name := range layout.CustomNames {
		s.customNames[mac] = name
	}
	return nil
}

// save rewrites the whole file. Callers hold at least a read lock.
func (s *FileStore) save() error {
	layout := fileLayout{
		FirstSeen:   make(map[string]string, len(s.firstSeen)),
		CustomNames: make(map[string]string, len(s.customNames)),
	}
	for mac, ts := range s.firstSeen {
		layout.FirstSeen[mac] = strconv.FormatInt(ts, 10)
	}
	for mac, name := range s.customNames {
		layout.CustomNames[mac] = name
	}

	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *FileStore) FirstSeen(mac string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.firstSeen[mac]
	return ts, ok
}

// RecordFirstSeen writes the timestamp for mac unless one is already
// recorded. Persistence failures are logged and swallowed.
func (s *FileStore) RecordFirstSeen(mac string, ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.firstSeen[mac]; ok {
		return
	}
	s.firstSeen[mac] = ts
	if err := s.save(); err != nil {
		slog.Error("failed to save device history", "error", err)
	}
}

func (s *FileStore) CustomName(mac string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.customNames[mac]
	return name, ok
}

func (s *FileStore) SetCustomName(mac, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customNames[mac] = name
	return s.save()
}

// Sweep drops first-seen entries older than the retention window that have
// no custom name. Returns the number of dropped entries.
func (s *FileStore) Sweep(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for mac, ts := range s.firstSeen {
		if now-ts <= RetentionWindow.Milliseconds() {
			continue
		}
		if _, named := s.customNames[mac]; named {
			continue
		}
		delete(s.firstSeen, mac)
		dropped++
	}

	if dropped > 0 {
		if err := s.save(); err != nil {
			slog.Error("failed to save device history after sweep", "error", err)
		}
	}
	return dropped
}
