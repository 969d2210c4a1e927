// Package configstore caches the general configuration in memory and mirrors it
// to a JSON file so that a restarted process can serve it without a database round trip.
//
// The database stays the system of record: an absent, corrupt or expired cache is
// reported as a miss and the caller reloads from the database.
package configstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"hospital-server/shared/models"
)

const (
	// DefaultTTL is the maximum age of a cached value.
	DefaultTTL = 24 * time.Hour
	// DefaultFileName is used when no cache path is configured.
	DefaultFileName = "hospital-general-config.json"
)

// WriteStatus reports how far a write got. A write never fails at the API level.
type WriteStatus int

const (
	// WriteDurable means the value is in memory and on disk.
	WriteDurable WriteStatus = iota
	// WriteMemoryOnly means the disk mirror could not be updated.
	WriteMemoryOnly
)

func (s WriteStatus) String() string {
	if s == WriteMemoryOnly {
		return "memory_only"
	}
	return "durable"
}

// Options configures a Store.
type Options struct {
	// Path of the JSON mirror. Defaults to DefaultFileName in the OS temp dir.
	Path string
	// TTL defaults to DefaultTTL.
	TTL time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Store is a read-through/write-through cache of the general configuration.
type Store struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu    sync.RWMutex // guards entry
	entry *Entry

	// fileMu serialises disk access so the file follows the memory order of writes.
	fileMu sync.Mutex
}

// New creates a Store. Nothing is read from disk until the first Get.
func New(opts Options, logger *zap.Logger) *Store {
	if opts.Path == "" {
		opts.Path = filepath.Join(os.TempDir(), DefaultFileName)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   opts.Path,
		ttl:    opts.TTL,
		now:    opts.Now,
		logger: logger.Named("ConfigStore").With(zap.String("path", opts.Path)),
	}
}

// Path returns the location of the on-disk mirror.
func (s *Store) Path() string { return s.path }

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns the cached configuration, or false when the caller must load it
// from the database. A fresh in-memory entry is returned without any I/O.
func (s *Store) Get() (models.GeneralConfig, bool) {
	now := s.now()

	s.mu.RLock()
	entry := s.entry
	s.mu.RUnlock()

	if entry != nil && s.isFresh(entry, now) {
		return cloneConfig(entry.General), true
	}
	return s.loadFromDisk(now)
}

// Version returns the database version of the in-memory entry, 0 if unknown.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return 0
	}
	return s.entry.Version
}

// Set replaces the cached configuration. The in-memory value is updated before
// the disk write, and stays authoritative if the disk write fails.
func (s *Store) Set(cfg models.GeneralConfig) WriteStatus {
	return s.SetVersioned(cfg, 0)
}

// SetVersioned is Set with the database row version attached to the entry.
func (s *Store) SetVersioned(cfg models.GeneralConfig, version int64) WriteStatus {
	entry := &Entry{
		General:   cloneConfig(cfg),
		Timestamp: s.now().UnixMilli(),
		Version:   version,
	}

	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	s.mu.Lock()
	s.entry = entry
	s.mu.Unlock()

	return s.persistLocked(entry)
}

// ApplyIfNewer stores cfg only when version is newer than the in-memory entry.
// It reports whether the value was applied.
func (s *Store) ApplyIfNewer(cfg models.GeneralConfig, version int64) (bool, WriteStatus) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	s.mu.Lock()
	if s.entry != nil && s.entry.Version >= version {
		s.mu.Unlock()
		return false, WriteDurable
	}
	entry := &Entry{
		General:   cloneConfig(cfg),
		Timestamp: s.now().UnixMilli(),
		Version:   version,
	}
	s.entry = entry
	s.mu.Unlock()

	return true, s.persistLocked(entry)
}

// SetIfNotOlder stores cfg unless the in-memory entry is fresh and carries a
// higher version. An equal version is applied so that a reload after expiry
// refreshes the timestamp. It reports whether the value was applied.
func (s *Store) SetIfNotOlder(cfg models.GeneralConfig, version int64) (bool, WriteStatus) {
	now := s.now()

	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	s.mu.Lock()
	if cur := s.entry; cur != nil && s.isFresh(cur, now) && cur.Version > version {
		s.mu.Unlock()
		return false, WriteDurable
	}
	entry := &Entry{
		General:   cloneConfig(cfg),
		Timestamp: now.UnixMilli(),
		Version:   version,
	}
	s.entry = entry
	s.mu.Unlock()

	return true, s.persistLocked(entry)
}

// Clear drops the in-memory entry and deletes the file. A missing file is fine.
func (s *Store) Clear() {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	s.mu.Lock()
	s.entry = nil
	s.mu.Unlock()

	if err := removeFile(s.path); err != nil {
		s.logger.Error("Failed to delete config cache file", zap.Error(err))
		return
	}
	s.logger.Info("Config cache cleared")
}

func (s *Store) isFresh(e *Entry, now time.Time) bool {
	return e.age(now) < s.ttl
}

// loadFromDisk handles a memory miss. Every failure is a miss, never an error.
func (s *Store) loadFromDisk(now time.Time) (models.GeneralConfig, bool) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	// A Set may have landed while we waited for the file lock.
	s.mu.RLock()
	current := s.entry
	s.mu.RUnlock()
	if current != nil && s.isFresh(current, now) {
		return cloneConfig(current.General), true
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("Config cache file not found")
		} else {
			s.logger.Warn("Failed to read config cache file, treating as miss", zap.Error(err))
		}
		return models.GeneralConfig{}, false
	}

	entry, format, err := parseEntry(data, now)
	if err != nil {
		// Файл не удаляем: следующий успешный Set его перезапишет.
		s.logger.Warn("Malformed config cache file, treating as miss", zap.Error(err))
		return models.GeneralConfig{}, false
	}

	if format == formatLegacy {
		status := s.persistLocked(entry)
		s.logger.Info("Upgraded legacy config cache file",
			zap.String("from", format.String()),
			zap.Stringer("write_status", status),
		)
	}

	if !s.isFresh(entry, now) {
		s.logger.Debug("Config cache file expired",
			zap.Duration("age", entry.age(now)),
			zap.Duration("ttl", s.ttl),
		)
		return models.GeneralConfig{}, false
	}

	s.mu.Lock()
	s.entry = entry
	s.mu.Unlock()

	return cloneConfig(entry.General), true
}

// persistLocked writes entry to disk. Callers hold fileMu.
func (s *Store) persistLocked(entry *Entry) WriteStatus {
	data, err := encodeEntry(entry)
	if err != nil {
		s.logger.Error("Failed to encode config cache entry", zap.Error(err))
		return WriteMemoryOnly
	}

	if err := writeFile(s.path, data); err != nil {
		s.logger.Error("Failed to persist config cache, keeping in-memory value", zap.Error(err))
		var tmpErr *tempFileError
		if errors.As(err, &tmpErr) {
			if rmErr := removeFile(tmpErr.path); rmErr != nil {
				s.logger.Warn("Failed to remove temp cache file", zap.String("tmp_path", tmpErr.path), zap.Error(rmErr))
			}
		}
		return WriteMemoryOnly
	}
	return WriteDurable
}

func cloneConfig(cfg models.GeneralConfig) models.GeneralConfig {
	if cfg.LogoURL != nil {
		logo := *cfg.LogoURL
		cfg.LogoURL = &logo
	}
	return cfg
}
