package configstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"hospital-server/shared/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, clock *fakeClock) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "general.json")
	return New(Options{Path: path, Now: clock.Now}, zap.NewNop()), path
}

func sampleConfig() models.GeneralConfig {
	logo := "/static/logo.png"
	return models.GeneralConfig{
		Title: "Hospital X",
		Color: models.ColorPalette{
			HeaderColor:    "#111",
			ContentColor:   "#222",
			ContainerColor: "#333",
		},
		Theme:   models.ThemeDark,
		LogoURL: &logo,
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func readFileEntry(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestStore_SetThenGetRoundTrip(t *testing.T) {
	clock := newFakeClock()
	store, path := newTestStore(t, clock)

	cfg := sampleConfig()
	status := store.Set(cfg)
	assert.Equal(t, WriteDurable, status)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, cfg, got)

	doc := readFileEntry(t, path)
	assert.Contains(t, doc, "general")
	assert.EqualValues(t, clock.Now().UnixMilli(), doc["timestamp"])

	_, err := os.Stat(path + tmpSuffix)
	assert.True(t, os.IsNotExist(err), "temp file must not survive a successful write")
}

func TestStore_SetThenGetWithWallClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "general.json")
	store := New(Options{Path: path}, zap.NewNop())

	cfg := models.GeneralConfig{
		Title: "Hospital X",
		Color: models.ColorPalette{HeaderColor: "#111", ContentColor: "#222", ContainerColor: "#333"},
		Theme: "dark",
	}
	callTime := time.Now()
	store.Set(cfg)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, cfg, got)

	doc := readFileEntry(t, path)
	ts, isNumber := doc["timestamp"].(float64)
	require.True(t, isNumber)
	assert.InDelta(t, float64(callTime.UnixMilli()), ts, 1000)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t, newFakeClock())
	store.Set(sampleConfig())

	got, ok := store.Get()
	require.True(t, ok)
	*got.LogoURL = "/mutated.png"
	got.Title = "mutated"

	again, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, sampleConfig(), again)
}

func TestStore_ExpiredInMemoryIsMiss(t *testing.T) {
	clock := newFakeClock()
	store, _ := newTestStore(t, clock)
	store.Set(sampleConfig())

	clock.Advance(DefaultTTL - time.Millisecond)
	_, ok := store.Get()
	assert.True(t, ok, "entry is still fresh just before the TTL")

	clock.Advance(time.Millisecond)
	_, ok = store.Get()
	assert.False(t, ok, "entry at exactly TTL age is stale")
}

func TestStore_ExpiredFileIsMiss(t *testing.T) {
	clock := newFakeClock()
	store, path := newTestStore(t, clock)

	writeJSON(t, path, map[string]any{
		"general": map[string]any{
			"title": "Old",
			"color": map[string]any{"headerColor": "#1", "contentColor": "#2", "containerColor": "#3"},
			"theme": "light",
		},
		"timestamp": clock.Now().Add(-25 * time.Hour).UnixMilli(),
	})

	_, ok := store.Get()
	assert.False(t, ok)
}

func TestStore_MissingFileIsMiss(t *testing.T) {
	store, _ := newTestStore(t, newFakeClock())
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestStore_InvalidJSONIsMissAndFileIsKept(t *testing.T) {
	store, path := newTestStore(t, newFakeClock())
	require.NoError(t, os.WriteFile(path, []byte(`{"general": {"title": "A",`), 0o600))

	assert.NotPanics(t, func() {
		_, ok := store.Get()
		assert.False(t, ok)
	})

	_, err := os.Stat(path)
	assert.NoError(t, err, "corrupt file is left for the next Set to overwrite")
}

func TestStore_IncompleteNestedIsMiss(t *testing.T) {
	clock := newFakeClock()
	store, path := newTestStore(t, clock)

	writeJSON(t, path, map[string]any{
		"general": map[string]any{
			"title": "No theme",
			"color": map[string]any{"headerColor": "#1", "contentColor": "#2", "containerColor": "#3"},
		},
		"timestamp": clock.Now().UnixMilli(),
	})

	_, ok := store.Get()
	assert.False(t, ok)
}

func TestStore_LegacyFileIsUpgraded(t *testing.T) {
	clock := newFakeClock()
	store, path := newTestStore(t, clock)

	ts := clock.Now().Add(-time.Hour).UnixMilli()
	writeJSON(t, path, map[string]any{
		"title":     "A",
		"theme":     "default",
		"timestamp": ts,
	})

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, "default", got.Theme)
	assert.Equal(t, models.DefaultColorPalette(), got.Color)
	assert.Nil(t, got.LogoURL)

	doc := readFileEntry(t, path)
	require.Contains(t, doc, "general")
	assert.NotContains(t, doc, "title")
	general := doc["general"].(map[string]any)
	assert.Equal(t, "A", general["title"])
	assert.EqualValues(t, ts, doc["timestamp"])
}

func TestStore_LegacyFileKeepsPartialColors(t *testing.T) {
	clock := newFakeClock()
	store, path := newTestStore(t, clock)

	writeJSON(t, path, map[string]any{
		"title":   "B",
		"theme":   "light",
		"color":   map[string]any{"headerColor": "#abcdef"},
		"logoUrl": "https://example.org/logo.svg",
	})

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "#abcdef", got.Color.HeaderColor)
	assert.Equal(t, models.DefaultColorPalette().ContentColor, got.Color.ContentColor)
	require.NotNil(t, got.LogoURL)
	assert.Equal(t, "https://example.org/logo.svg", *got.LogoURL)

	doc := readFileEntry(t, path)
	assert.EqualValues(t, clock.Now().UnixMilli(), doc["timestamp"], "legacy file without timestamp is stamped on upgrade")
}

func TestStore_ExpiredLegacyFileIsUpgradedButMiss(t *testing.T) {
	clock := newFakeClock()
	store, path := newTestStore(t, clock)

	writeJSON(t, path, map[string]any{
		"title":     "Stale",
		"theme":     "dark",
		"timestamp": clock.Now().Add(-48 * time.Hour).UnixMilli(),
	})

	_, ok := store.Get()
	assert.False(t, ok)
	assert.Contains(t, readFileEntry(t, path), "general")
}

func TestStore_ClearRemovesMemoryAndFile(t *testing.T) {
	store, path := newTestStore(t, newFakeClock())
	store.Set(sampleConfig())

	store.Clear()

	_, ok := store.Get()
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NotPanics(t, store.Clear, "clearing twice tolerates a missing file")
}

func TestStore_SurvivesRestart(t *testing.T) {
	clock := newFakeClock()
	first, path := newTestStore(t, clock)
	first.SetVersioned(sampleConfig(), 7)

	second := New(Options{Path: path, Now: clock.Now}, zap.NewNop())
	got, ok := second.Get()
	require.True(t, ok)
	assert.Equal(t, sampleConfig(), got)
	assert.Equal(t, int64(7), second.Version())
}

func TestStore_DiskFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store := New(Options{Path: filepath.Join(blocker, "general.json"), Now: newFakeClock().Now}, zap.NewNop())

	status := store.Set(sampleConfig())
	assert.Equal(t, WriteMemoryOnly, status)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, sampleConfig(), got)
}

func TestStore_FailedReplaceRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "general.json")
	// A non-empty directory at the target path makes the final rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))

	store := New(Options{Path: path, Now: newFakeClock().Now}, zap.NewNop())
	status := store.Set(sampleConfig())
	assert.Equal(t, WriteMemoryOnly, status)

	_, err := os.Stat(path + tmpSuffix)
	assert.True(t, os.IsNotExist(err))

	_, ok := store.Get()
	assert.True(t, ok)
}

func TestStore_SetIfNotOlder(t *testing.T) {
	clock := newFakeClock()
	store, path := newTestStore(t, clock)

	applied, _ := store.SetIfNotOlder(sampleConfig(), 5)
	assert.True(t, applied, "empty store accepts any version")

	older := sampleConfig()
	older.Title = "older"
	applied, _ = store.SetIfNotOlder(older, 4)
	assert.False(t, applied)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "Hospital X", got.Title)
	assert.Equal(t, int64(5), store.Version())

	doc := readFileEntry(t, path)
	assert.Equal(t, "Hospital X", doc["general"].(map[string]any)["title"])
}

func TestStore_SetIfNotOlderReloadsEqualVersionAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	store, _ := newTestStore(t, clock)
	store.SetVersioned(sampleConfig(), 5)

	clock.Advance(25 * time.Hour)
	_, ok := store.Get()
	require.False(t, ok)

	applied, status := store.SetIfNotOlder(sampleConfig(), 5)
	assert.True(t, applied)
	assert.Equal(t, WriteDurable, status)

	_, ok = store.Get()
	assert.True(t, ok)
}

func TestStore_SetIfNotOlderReplacesExpiredHigherVersion(t *testing.T) {
	clock := newFakeClock()
	store, _ := newTestStore(t, clock)
	store.SetVersioned(sampleConfig(), 9)
	clock.Advance(25 * time.Hour)

	restored := sampleConfig()
	restored.Title = "Restored"
	applied, _ := store.SetIfNotOlder(restored, 2)
	assert.True(t, applied)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "Restored", got.Title)
	assert.Equal(t, int64(2), store.Version())
}

func TestStore_LegacyUpgradeDiskFailureStillServes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "general.json")
	writeJSON(t, path, map[string]any{"title": "Legacy", "theme": "light"})

	// A directory at the temp path makes the upgrade write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(path+tmpSuffix, "occupied"), 0o755))

	core, logs := observer.New(zap.ErrorLevel)
	store := New(Options{Path: path, Now: newFakeClock().Now}, zap.New(core))

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "Legacy", got.Title)
	assert.Equal(t, models.DefaultColorPalette(), got.Color)

	assert.Equal(t, 1, logs.FilterMessage("Failed to persist config cache, keeping in-memory value").Len())

	doc := readFileEntry(t, path)
	assert.NotContains(t, doc, "general", "file stays in the legacy layout")

	got, ok = store.Get()
	require.True(t, ok, "upgraded value is served from memory")
	assert.Equal(t, "Legacy", got.Title)
}

func TestStore_ApplyIfNewer(t *testing.T) {
	store, _ := newTestStore(t, newFakeClock())

	applied, _ := store.ApplyIfNewer(sampleConfig(), 2)
	assert.True(t, applied)

	older := sampleConfig()
	older.Title = "older"
	applied, _ = store.ApplyIfNewer(older, 2)
	assert.False(t, applied)
	applied, _ = store.ApplyIfNewer(older, 1)
	assert.False(t, applied)

	newer := sampleConfig()
	newer.Title = "newer"
	applied, status := store.ApplyIfNewer(newer, 3)
	assert.True(t, applied)
	assert.Equal(t, WriteDurable, status)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "newer", got.Title)
	assert.Equal(t, int64(3), store.Version())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store, _ := newTestStore(t, newFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set(sampleConfig())
		}()
		go func() {
			defer wg.Done()
			store.Get()
		}()
	}
	wg.Wait()

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, sampleConfig(), got)
}

func TestNew_Defaults(t *testing.T) {
	store := New(Options{}, nil)
	assert.Equal(t, DefaultTTL, store.TTL())
	assert.Equal(t, filepath.Join(os.TempDir(), DefaultFileName), store.Path())
}
