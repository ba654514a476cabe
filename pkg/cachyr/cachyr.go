package cachyr

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GitThaisen/yr-cachyr/internal/logging"
	"github.com/GitThaisen/yr-cachyr/pkg/fs"
)

// Open errors.
var (
	ErrNameEmpty = errors.New("cache name cannot be empty")
	ErrNilCodec  = errors.New("codec cannot be nil")
)

// Directory and file permissions for cache storage.
const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Options configures a cache opened with [Open].
// The zero value is usable: platform base directory, default sweep
// interval, stderr logging, real filesystem, wall clock.
type Options struct {
	// BaseDir is the directory under which the cache's own directory is
	// created. Empty means [DefaultBaseDir] of the process environment.
	BaseDir string

	// SweepInterval is the minimum delay between two full expiration
	// sweeps triggered by ordinary operations. Zero means
	// [DefaultSweepInterval].
	SweepInterval time.Duration

	// Logger receives the cache's diagnostics. Nil means a shared
	// warn-level stderr logger.
	Logger logrus.FieldLogger

	// FS is the filesystem the cache operates on. Nil means [fs.NewReal].
	// Tests substitute a [fs.Fault] here.
	FS fs.FS

	// Now is the clock used for expiration decisions. Nil means
	// [time.Now]. Tests substitute a deterministic clock.
	Now func() time.Time
}

// Cache is a persistent, filesystem-backed key-value cache.
//
// Arbitrary string keys map to values of type V, converted to file
// content by a [Codec]. Each entry is one regular file in the cache
// directory; the logical key and the optional expiration instant travel
// as extended attributes on that file, so the in-memory index can always
// be rebuilt from disk alone.
//
// All operations follow a swallow-and-log error policy: I/O, codec and
// attribute failures surface only as an absent value or a skipped write,
// never as an error or panic. A Cache is safe for concurrent use.
type Cache[V any] struct {
	name  string
	dir   string
	codec Codec[V]
	fsys  fs.FS
	log   logrus.FieldLogger
	now   func() time.Time

	mu           sync.Mutex
	index        *storageIndex
	meta         metadataStore
	sweeps       sweepPolicy
	loaded       bool
	dirErrLogged bool
}

// Open opens (or lazily creates) the named cache under the base
// directory from opts. The cache directory itself is not created until
// the first operation that needs it; the initial index load happens on
// the first operation as well.
func Open[V any](name string, codec Codec[V], opts Options) (*Cache[V], error) {
	if name == "" {
		return nil, ErrNameEmpty
	}

	if codec == nil {
		return nil, ErrNilCodec
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = DefaultBaseDir(environMap())
	}

	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}

	log = log.WithField("cache", name)

	fsys := opts.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	interval := opts.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	meta := metadataStore{fsys: fsys, log: log}

	return &Cache[V]{
		name:   name,
		dir:    filepath.Join(baseDir, name),
		codec:  codec,
		fsys:   fsys,
		log:    log,
		now:    now,
		index:  newStorageIndex(fsys, meta, log),
		meta:   meta,
		sweeps: sweepPolicy{interval: interval},
	}, nil
}

// OpenWithConfig opens the named cache using settings from a [Config],
// typically loaded with [LoadConfig]. The logger is built from the
// config's log level and optional log file.
func OpenWithConfig[V any](name string, codec Codec[V], cfg Config) (*Cache[V], error) {
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	return Open(name, codec, Options{
		BaseDir:       cfg.BaseDir,
		SweepInterval: cfg.sweepInterval(),
		Logger:        logger,
	})
}

// Name returns the cache's name.
func (c *Cache[V]) Name() string {
	return c.name
}

// Dir returns the cache's directory.
func (c *Cache[V]) Dir() string {
	return c.dir
}

// Contains reports whether the key is indexed and its file exists on
// disk. Deliberately no expiration check and no eviction: a Contains
// must never mutate the cache, so an expired-but-unswept entry still
// reports true until a sweep or a Get evicts it.
func (c *Cache[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return false
	}

	name, ok := c.index.lookup(key)
	if !ok {
		return false
	}

	exists, err := c.fsys.Exists(filepath.Join(c.dir, name))
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("checking file existence")

		return false
	}

	return exists
}

// Get returns the value stored for key, or (zero, false) when the key is
// absent, expired, unreadable, or undecodable. An expired entry is
// removed immediately (lazy expiration), independent of full sweeps.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return zero, false
	}

	c.sweepIfDueLocked()

	name, ok := c.index.lookup(key)
	if !ok {
		return zero, false
	}

	path := filepath.Join(c.dir, name)

	if expires, hasExpiry := c.meta.expiration(path); hasExpiry && c.now().After(expires) {
		c.removeFileLocked(key, path)

		return zero, false
	}

	data, err := c.fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// The file vanished behind our back; heal the index.
			c.index.remove(key)
		} else {
			c.log.WithError(err).WithField("key", key).Warn("reading cache file")
		}

		return zero, false
	}

	value, err := c.codec.Decode(data)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("decoding cached value")

		return zero, false
	}

	return value, true
}

// Set stores value for key with no expiration. An existing entry is
// overwritten and its previous expiration cleared.
func (c *Cache[V]) Set(key string, value V) {
	c.setExpiring(key, value, nil)
}

// SetWithExpiry stores value for key, expiring at the given instant.
func (c *Cache[V]) SetWithExpiry(key string, value V, expiresAt time.Time) {
	c.setExpiring(key, value, &expiresAt)
}

func (c *Cache[V]) setExpiring(key string, value V, expiresAt *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return
	}

	c.sweepIfDueLocked()

	data, err := c.codec.Encode(value)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("encoding value, write skipped")

		return
	}

	// Reuse the storage name of an existing entry; deriving again could
	// pick a different UUID and orphan the current file.
	name, ok := c.index.lookup(key)
	if !ok {
		name = deriveStorageName(key)
	}

	path := filepath.Join(c.dir, name)

	err = c.fsys.WriteFileAtomic(path, data, filePerms)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("writing cache file, write skipped")

		return
	}

	// The atomic write produced a fresh inode, so both attributes must be
	// (re)written. Without a key attribute the file would be misread as a
	// legacy entry on the next rebuild, so a failed key write rolls the
	// whole Set back.
	err = c.meta.setKey(path, key)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("writing key attribute, rolling back")

		removeErr := c.fsys.Remove(path)
		if removeErr != nil {
			c.log.WithError(removeErr).WithField("key", key).Warn("removing rolled-back file")
		}

		c.index.remove(key)

		return
	}

	if expiresAt != nil {
		c.meta.setExpiration(path, expiresAt)
	}

	c.index.insert(key, name)
}

// Remove deletes the entry for key. Unknown keys are a no-op.
func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return
	}

	name, ok := c.index.lookup(key)
	if !ok {
		return
	}

	c.removeFileLocked(key, filepath.Join(c.dir, name))
}

// RemoveExpired deletes every expired entry now, regardless of whether a
// throttled sweep is due.
func (c *Cache[V]) RemoveExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return
	}

	c.sweepLocked()
}

// RemoveAll deletes the entire cache directory in one operation. The
// index is rebuilt from (now empty) disk on the next operation, so no
// per-entry bookkeeping is needed.
func (c *Cache[V]) RemoveAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.fsys.RemoveAll(c.dir)
	if err != nil {
		c.log.WithError(err).Warn("removing cache directory")
	}

	c.loaded = false
	c.dirErrLogged = false
}

// RemoveItemsOlderThan deletes every entry whose file was created at or
// before the given instant, judged by filesystem creation time rather
// than expiration. The in-memory index is not touched in the same pass;
// it self-heals from disk truth on reads and rebuilds.
func (c *Cache[V]) RemoveItemsOlderThan(cutoff time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return
	}

	dirEntries, err := c.fsys.ReadDir(c.dir)
	if err != nil {
		c.log.WithError(err).Warn("scanning cache directory")

		return
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())

		created, err := c.fsys.CreationTime(path)
		if err != nil {
			c.log.WithError(err).WithField("file", entry.Name()).Warn("reading creation time")

			continue
		}

		if created.After(cutoff) {
			continue
		}

		err = c.fsys.Remove(path)
		if err != nil {
			c.log.WithError(err).WithField("file", entry.Name()).Warn("removing old file")
		}
	}
}

// ExpirationDate returns the entry's expiration instant.
// ok is false when the key is not stored or the entry never expires.
func (c *Cache[V]) ExpirationDate(key string) (expires time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return time.Time{}, false
	}

	name, found := c.index.lookup(key)
	if !found {
		return time.Time{}, false
	}

	return c.meta.expiration(filepath.Join(c.dir, name))
}

// SetExpirationDate sets or clears the entry's expiration instant;
// nil means the entry never expires. Unknown keys are a no-op.
func (c *Cache[V]) SetExpirationDate(key string, expires *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return
	}

	name, found := c.index.lookup(key)
	if !found {
		c.log.WithField("key", key).Debug("set expiration for unknown key")

		return
	}

	c.meta.setExpiration(filepath.Join(c.dir, name), expires)
}

// Len returns the number of indexed entries. Expired-but-unswept entries
// count until evicted.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.readyLocked() {
		return 0
	}

	return c.index.len()
}

// --- Internal ---

// readyLocked ensures the cache directory exists and the index is
// loaded. A directory that cannot be created degrades every operation
// to a no-op (logged once per occurrence) instead of crashing the host.
func (c *Cache[V]) readyLocked() bool {
	err := c.fsys.MkdirAll(c.dir, dirPerms)
	if err != nil {
		if !c.dirErrLogged {
			c.log.WithError(err).WithField("dir", c.dir).Error("cannot create cache directory, cache disabled")
			c.dirErrLogged = true
		}

		return false
	}

	c.dirErrLogged = false

	if !c.loaded {
		c.index.load(c.dir)
		c.loaded = true
	}

	return true
}

// sweepIfDueLocked runs a throttled sweep.
func (c *Cache[V]) sweepIfDueLocked() {
	if c.sweeps.due(c.now()) {
		c.sweepLocked()
	}
}

// sweepLocked removes every expired file from disk and from the index,
// then resets the throttle.
func (c *Cache[V]) sweepLocked() {
	now := c.now()

	dirEntries, err := c.fsys.ReadDir(c.dir)
	if err != nil {
		c.log.WithError(err).Warn("scanning cache directory")

		return
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())

		expires, hasExpiry := c.meta.expiration(path)
		if !hasExpiry || !expires.Before(now) {
			continue
		}

		err = c.fsys.Remove(path)
		if err != nil {
			c.log.WithError(err).WithField("file", entry.Name()).Warn("removing expired file")

			continue
		}

		c.index.removeByStorageName(entry.Name())
	}

	c.sweeps.mark(now)
}

// removeFileLocked deletes a single entry's file and index mapping.
func (c *Cache[V]) removeFileLocked(key, path string) {
	c.index.remove(key)

	err := c.fsys.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		c.log.WithError(err).WithField("key", key).Warn("removing cache file")
	}
}
