// Package fs provides the filesystem abstraction the cache is built on.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the cache needs,
//     including named extended attributes and file creation times
//   - [Real]: production implementation using the [os] package and
//     raw xattr syscalls
//   - [Fault]: testing implementation that overrides individual
//     operations to simulate failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("entry")
//	if err != nil {
//	    return err
//	}
package fs

import (
	"errors"
	"os"
	"time"
)

// ErrAttrNotFound is returned by [FS.Getxattr] and [FS.Removexattr] when
// the named attribute is not set on the file. Implementations must return
// an error matching this sentinel (via errors.Is) so callers can
// distinguish "attribute absent" from genuine I/O failures.
var ErrAttrNotFound = errors.New("extended attribute not found")

// FS defines the filesystem operations used by the cache.
//
// Two implementations are provided:
//   - [Real]: production use, wraps [os] and xattr syscalls
//   - [Fault]: testing use, overrides selected operations
//
// Paths use OS semantics (like the os package and path/filepath), not the
// slash-separated paths used by the standard library io/fs package.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename to prevent partial writes on crash.
	//
	// Note: the rename produces a new inode, so any extended attributes
	// on a previously existing file at path are discarded.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries. See [os.ReadDir].
	// Entries are sorted by name.
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// RemoveAll deletes a path and any children. See [os.RemoveAll].
	// No error if path doesn't exist.
	RemoveAll(path string) error

	// Getxattr returns the value of the named extended attribute.
	// Returns an error matching [ErrAttrNotFound] if the attribute
	// is not set.
	Getxattr(path, name string) ([]byte, error)

	// Setxattr sets the named extended attribute to the given value,
	// creating or replacing it.
	Setxattr(path, name string, data []byte) error

	// Removexattr removes the named extended attribute.
	// Returns an error matching [ErrAttrNotFound] if the attribute
	// is not set.
	Removexattr(path, name string) error

	// CreationTime returns the file's creation (birth) time where the
	// filesystem records one, falling back to the modification time.
	CreationTime(path string) (time.Time, error)
}
