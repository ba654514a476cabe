package cachyr

import (
	"github.com/google/uuid"
)

const (
	// maxStorageNameBytes is the byte bound imposed on a single filename
	// by common filesystems (ext4, APFS, NTFS all allow 255).
	maxStorageNameBytes = 255

	// uuidLength is the character length of a canonical UUID string.
	uuidLength = 36

	// truncateStep is how many characters each retry drops when hunting
	// for a suffix whose byte length fits the filename bound.
	truncateStep = 4
)

// deriveStorageName turns a logical key into a filename that respects
// maxStorageNameBytes while remaining distinguishable across long keys.
//
// Short keys map to their encoded form directly. For longer keys the
// longest trailing substring that fits the byte bound is kept (the tail
// of a hierarchical key is usually its most distinguishing part) and its
// first 36 characters are overwritten with a fresh random UUID, which
// guarantees uniqueness even when two long keys share an entire suffix.
//
// The result is random for long keys, so callers must derive a name once
// per key and remember it (the storage index does); re-deriving would
// orphan the previously written file.
func deriveStorageName(key string) string {
	encoded := encodeKey(key)
	if len(encoded) <= maxStorageNameBytes {
		return encoded
	}

	// Truncation happens on characters, not bytes: a byte-level cut
	// could split a multi-byte sequence. Candidate character counts
	// start at the bound and shrink until the suffix's byte length fits.
	runes := []rune(encoded)

	candidate := maxStorageNameBytes
	if candidate > len(runes) {
		candidate = len(runes)
	}

	suffix := runes[len(runes)-candidate:]
	for len(string(suffix)) > maxStorageNameBytes {
		candidate -= truncateStep
		suffix = runes[len(runes)-candidate:]
	}

	// The loop bottoms out well above 36 characters: a suffix of 63
	// four-byte characters is only 252 bytes, so there is always room
	// for the UUID prefix.
	id := uuid.NewString()

	return id + string(suffix[uuidLength:])
}
