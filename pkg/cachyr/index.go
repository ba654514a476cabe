package cachyr

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/GitThaisen/yr-cachyr/pkg/fs"
)

// storageIndex is the in-memory map from logical key to storage name.
//
// It is never persisted as such: the on-disk truth is the key attribute
// carried by every cache file, and load reconstructs the map from a
// directory scan. That makes the index self-healing after restarts and
// after external file-level changes, at the cost of one scan per open.
//
// Callers (the Cache) serialize all access; storageIndex itself is not
// concurrency-safe.
type storageIndex struct {
	fsys fs.FS
	meta metadataStore
	log  logrus.FieldLogger

	entries map[string]string // logical key -> storage name
}

func newStorageIndex(fsys fs.FS, meta metadataStore, log logrus.FieldLogger) *storageIndex {
	return &storageIndex{
		fsys:    fsys,
		meta:    meta,
		log:     log,
		entries: make(map[string]string),
	}
}

// load discards the current map and rebuilds it by scanning dir.
//
// Files carrying a key attribute are indexed directly. Files without one
// are assumed to use the legacy scheme where the filename is the encoded
// key: the filename is decoded, the key attribute is written onto the
// file (migrating it in place), and only then is the mapping recorded.
// The two branches are deliberately separate; the legacy branch has
// failure modes (undecodable names, unwritable attributes) the attribute
// branch does not, and a file that cannot be migrated is skipped and
// left unindexed rather than guessed at.
func (ix *storageIndex) load(dir string) {
	ix.entries = make(map[string]string)

	dirEntries, err := ix.fsys.ReadDir(dir)
	if err != nil {
		ix.log.WithError(err).WithField("dir", dir).Warn("scanning cache directory")

		return
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		path := filepath.Join(dir, name)

		key, ok := ix.meta.key(path)
		if ok {
			ix.entries[key] = name

			continue
		}

		ix.migrateLegacy(path, name)
	}
}

// migrateLegacy indexes a file that predates key attributes.
func (ix *storageIndex) migrateLegacy(path, name string) {
	key, err := decodeKey(name)
	if err != nil {
		// Not a name this cache ever produced. Leave the file alone;
		// it stays on disk, unindexed, until cleaned up manually.
		ix.log.WithError(err).WithField("file", name).Warn("skipping undecodable legacy file")

		return
	}

	// A legacy filename always fits the filesystem bound, so the derived
	// name is the encoded key itself, i.e. the existing filename.
	storageName := deriveStorageName(key)

	err = ix.meta.setKey(path, key)
	if err != nil {
		ix.log.WithError(err).WithField("file", name).Warn("migrating legacy file")

		return
	}

	ix.entries[key] = storageName
}

// lookup returns the storage name for a key.
func (ix *storageIndex) lookup(key string) (string, bool) {
	name, ok := ix.entries[key]

	return name, ok
}

// insert records a key's storage name.
func (ix *storageIndex) insert(key, storageName string) {
	ix.entries[key] = storageName
}

// remove forgets a key.
func (ix *storageIndex) remove(key string) {
	delete(ix.entries, key)
}

// removeByStorageName forgets every key mapped to the given storage name.
// Used by the sweep, which walks files rather than keys.
func (ix *storageIndex) removeByStorageName(storageName string) {
	for key, name := range ix.entries {
		if name == storageName {
			delete(ix.entries, key)
		}
	}
}

// len returns the number of indexed keys.
func (ix *storageIndex) len() int {
	return len(ix.entries)
}
