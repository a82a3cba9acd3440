package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "device-history.json")
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	s := NewFileStore(tempStorePath(t))
	_, ok := s.FirstSeen("AA:BB:CC:DD:EE:FF")
	assert.False(t, ok)
}

func TestFileStore_RecordFirstSeenIsIdempotent(t *testing.T) {
	s := NewFileStore(tempStorePath(t))

	s.RecordFirstSeen("AA:BB:CC:DD:EE:FF", 1000)
	s.RecordFirstSeen("AA:BB:CC:DD:EE:FF", 9999)

	ts, ok := s.FirstSeen("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, int64(1000), ts, "later writes must not overwrite")
}

func TestFileStore_PersistsAcrossReload(t *testing.T) {
	path := tempStorePath(t)

	s := NewFileStore(path)
	s.RecordFirstSeen("AA:BB:CC:DD:EE:FF", 12345)
	require.NoError(t, s.SetCustomName("AA:BB:CC:DD:EE:FF", "My Phone"))

	reloaded := NewFileStore(path)
	ts, ok := reloaded.FirstSeen("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, int64(12345), ts)

	name, ok := reloaded.CustomName("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, "My Phone", name)
}

func TestFileStore_OnDiskLayout(t *testing.T) {
	path := tempStorePath(t)

	s := NewFileStore(path)
	s.RecordFirstSeen("AA:BB:CC:DD:EE:FF", 12345)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var layout struct {
		FirstSeen   map[string]string `json:"firstSeen"`
		CustomNames map[string]string `json:"customNames"`
	}
	require.NoError(t, json.Unmarshal(data, &layout))
	// Timestamps are string-encoded epoch milliseconds on disk.
	assert.Equal(t, "12345", layout.FirstSeen["AA:BB:CC:DD:EE:FF"])
}

func TestFileStore_MalformedEntriesSkipped(t *testing.T) {
	path := tempStorePath(t)
	raw := `{
  "firstSeen": {
    "AA:BB:CC:DD:EE:FF": "1000",
    "11:22:33:44:55:66": "not-a-number"
  },
  "customNames": {}
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s := NewFileStore(path)

	ts, ok := s.FirstSeen("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, int64(1000), ts)

	_, ok = s.FirstSeen("11:22:33:44:55:66")
	assert.False(t, ok)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	s := NewFileStore(path)
	_, ok := s.FirstSeen("AA:BB:CC:DD:EE:FF")
	assert.False(t, ok)

	// The store still accepts writes afterwards.
	s.RecordFirstSeen("AA:BB:CC:DD:EE:FF", 7)
	ts, ok := s.FirstSeen("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, int64(7), ts)
}

func TestFileStore_SweepSparesNamedEntries(t *testing.T) {
	path := tempStorePath(t)
	s := NewFileStore(path)

	now := time.Now().UnixMilli()
	old := now - RetentionWindow.Milliseconds() - 1

	s.RecordFirstSeen("AA:AA:AA:00:00:01", old) // expired, unnamed
	s.RecordFirstSeen("BB:BB:BB:00:00:02", old) // expired but named
	s.RecordFirstSeen("CC:CC:CC:00:00:03", now) // fresh
	require.NoError(t, s.SetCustomName("BB:BB:BB:00:00:02", "Office Beacon"))

	dropped := s.Sweep(now)
	assert.Equal(t, 1, dropped)

	_, ok := s.FirstSeen("AA:AA:AA:00:00:01")
	assert.False(t, ok)
	_, ok = s.FirstSeen("BB:BB:BB:00:00:02")
	assert.True(t, ok, "named entries never expire")
	_, ok = s.FirstSeen("CC:CC:CC:00:00:03")
	assert.True(t, ok)

	// The drop is flushed to disk.
	reloaded := NewFileStore(path)
	_, ok = reloaded.FirstSeen("AA:AA:AA:00:00:01")
	assert.False(t, ok)
}

func TestFileStore_SweepBoundary(t *testing.T) {
	s := NewFileStore(tempStorePath(t))

	now := int64(RetentionWindow.Milliseconds() * 2)
	exactly := now - RetentionWindow.Milliseconds()
	s.RecordFirstSeen("AA:BB:CC:DD:EE:FF", exactly)

	// Exactly at the window edge is still retained.
	assert.Zero(t, s.Sweep(now))
	assert.Equal(t, 1, s.Sweep(now+1))
}
