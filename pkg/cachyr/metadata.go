package cachyr

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/GitThaisen/yr-cachyr/pkg/fs"
)

// Extended attribute names. These are part of the on-disk format: older
// cache directories are migrated by looking for exactly these names, so
// they must stay stable across versions.
const (
	attrKey     = "user.cachyr.key"
	attrExpires = "user.cachyr.expires"
)

// expiresAttrSize is the fixed size of the expiration attribute:
// one little-endian IEEE-754 float64 holding Unix epoch seconds.
const expiresAttrSize = 8

// metadataStore reads and writes the two out-of-band attributes carried
// by every cache file: the logical key and the optional expiration.
//
// Failure policy: a missing expiration attribute is the normal state for
// non-expiring entries and is never logged. Every other attribute failure
// is logged at warn and treated as "absent" (reads) or absorbed (writes
// without a caller that can roll back); nothing here is fatal.
type metadataStore struct {
	fsys fs.FS
	log  logrus.FieldLogger
}

// key returns the logical key recorded on the file, or false when the
// attribute is absent or unreadable. A present attribute that does not
// hold valid UTF-8 is treated as absent, since a key written by the cache
// is always valid UTF-8.
func (m metadataStore) key(path string) (string, bool) {
	data, err := m.fsys.Getxattr(path, attrKey)
	if err != nil {
		if !errors.Is(err, fs.ErrAttrNotFound) {
			m.log.WithError(err).WithField("path", path).Warn("reading key attribute")
		}

		return "", false
	}

	if !utf8.Valid(data) {
		m.log.WithField("path", path).Warn("key attribute is not valid UTF-8")

		return "", false
	}

	return string(data), true
}

// setKey records the logical key on the file. Unlike the other metadata
// writes the error is returned: Set must roll back the freshly written
// file when the key cannot be attached, because an unkeyed file would be
// misread as a legacy entry on the next index rebuild.
func (m metadataStore) setKey(path, key string) error {
	return m.fsys.Setxattr(path, attrKey, []byte(key))
}

// expiration returns the file's expiration instant, or false when the
// entry never expires.
func (m metadataStore) expiration(path string) (time.Time, bool) {
	data, err := m.fsys.Getxattr(path, attrExpires)
	if err != nil {
		// Absent is the normal case for non-expiring entries.
		if !errors.Is(err, fs.ErrAttrNotFound) {
			m.log.WithError(err).WithField("path", path).Warn("reading expiration attribute")
		}

		return time.Time{}, false
	}

	if len(data) != expiresAttrSize {
		m.log.WithFields(logrus.Fields{
			"path": path,
			"size": len(data),
		}).Warn("expiration attribute has wrong size")

		return time.Time{}, false
	}

	seconds := math.Float64frombits(binary.LittleEndian.Uint64(data))

	return timeFromEpochSeconds(seconds), true
}

// setExpiration records the expiration instant on the file, or removes
// the attribute when expires is nil (meaning: never expires). Failures
// are logged and absorbed.
func (m metadataStore) setExpiration(path string, expires *time.Time) {
	if expires == nil {
		err := m.fsys.Removexattr(path, attrExpires)
		if err != nil && !errors.Is(err, fs.ErrAttrNotFound) {
			m.log.WithError(err).WithField("path", path).Warn("removing expiration attribute")
		}

		return
	}

	data := make([]byte, expiresAttrSize)
	binary.LittleEndian.PutUint64(data, math.Float64bits(epochSeconds(*expires)))

	err := m.fsys.Setxattr(path, attrExpires, data)
	if err != nil {
		m.log.WithError(err).WithField("path", path).Warn("writing expiration attribute")
	}
}

// epochSeconds converts an instant to fractional Unix epoch seconds.
// Computed from whole seconds plus nanoseconds rather than UnixNano so
// dates outside the int64-nanosecond range (roughly 1678-2262) survive.
func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

// timeFromEpochSeconds is the inverse of epochSeconds.
func timeFromEpochSeconds(seconds float64) time.Time {
	sec, frac := math.Modf(seconds)

	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
