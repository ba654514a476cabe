package fs

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// Real implements [FS] using the real filesystem.
//
// Most methods are pure passthroughs to the [os] package with identical
// behavior and error semantics. The exceptions are [Real.Exists] which
// wraps [os.Stat], [Real.WriteFileAtomic] which uses atomic file writes,
// and the xattr and creation-time methods which use raw syscalls.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// --- File Operations ---

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data via a temp file + rename in the same
// directory. The perm argument is accepted for interface compatibility;
// the file is created with the temp-file default mode.
func (r *Real) WriteFileAtomic(path string, data []byte, _ os.FileMode) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// --- Directory Operations ---

// A passthrough wrapper for [os.ReadDir].
func (r *Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// A passthrough wrapper for [os.MkdirAll].
func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// --- Metadata ---

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
// Returns (true, nil) if the file exists, (false, nil) if it does not,
// or (false, err) for other errors.
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// --- Mutations ---

// A passthrough wrapper for [os.Remove].
func (r *Real) Remove(path string) error {
	return os.Remove(path)
}

// A passthrough wrapper for [os.RemoveAll].
func (r *Real) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// --- Extended Attributes ---

// Initial buffer size for xattr reads. Large enough for encoded cache
// keys in the common case; grown on unix.ERANGE.
const xattrBufSize = 1024

// Getxattr reads the named extended attribute using [unix.Getxattr].
// A missing attribute (ENODATA) is reported as [ErrAttrNotFound].
func (r *Real) Getxattr(path, name string) ([]byte, error) {
	buf := make([]byte, xattrBufSize)

	for {
		n, err := unix.Getxattr(path, name, buf)
		if err == nil {
			return buf[:n], nil
		}

		if err == unix.ERANGE {
			// Attribute grew past our buffer; ask the kernel for the size.
			size, sizeErr := unix.Getxattr(path, name, nil)
			if sizeErr != nil {
				return nil, wrapXattrErr("getxattr", path, name, sizeErr)
			}

			buf = make([]byte, size)

			continue
		}

		return nil, wrapXattrErr("getxattr", path, name, err)
	}
}

// Setxattr sets the named extended attribute using [unix.Setxattr].
func (r *Real) Setxattr(path, name string, data []byte) error {
	err := unix.Setxattr(path, name, data, 0)
	if err != nil {
		return wrapXattrErr("setxattr", path, name, err)
	}

	return nil
}

// Removexattr removes the named extended attribute using [unix.Removexattr].
// A missing attribute (ENODATA) is reported as [ErrAttrNotFound].
func (r *Real) Removexattr(path, name string) error {
	err := unix.Removexattr(path, name)
	if err != nil {
		return wrapXattrErr("removexattr", path, name, err)
	}

	return nil
}

// wrapXattrErr maps ENODATA to [ErrAttrNotFound] and wraps everything
// else with the operation, path and attribute name.
func wrapXattrErr(op, path, name string, err error) error {
	if err == unix.ENODATA {
		return fmt.Errorf("%s %s on %s: %w", op, name, path, ErrAttrNotFound)
	}

	return fmt.Errorf("%s %s on %s: %w", op, name, path, err)
}

// --- Creation Time ---

// CreationTime returns the file's birth time via [unix.Statx].
// Filesystems that don't record birth times (the kernel leaves
// STATX_BTIME unset) fall back to the modification time.
func (r *Real) CreationTime(path string) (time.Time, error) {
	var stx unix.Statx_t

	err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME|unix.STATX_MTIME, &stx)
	if err != nil {
		return time.Time{}, fmt.Errorf("statx %s: %w", path, err)
	}

	if stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
	}

	return time.Unix(stx.Mtime.Sec, int64(stx.Mtime.Nsec)), nil
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
