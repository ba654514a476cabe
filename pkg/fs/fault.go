package fs

import (
	"os"
	"time"
)

// Fault implements [FS] by delegating to an inner filesystem while
// letting tests override individual operations.
//
// Any nil function field falls through to the wrapped FS, so a test only
// has to stub the operation it wants to fail (or fake), e.g. a
// [FS.Setxattr] that returns a permission error, or a [FS.CreationTime]
// that reports synthetic birth times.
//
// Example:
//
//	fsys := &fs.Fault{
//	    FS: fs.NewReal(),
//	    SetxattrFn: func(path, name string, data []byte) error {
//	        return syscall.EACCES
//	    },
//	}
type Fault struct {
	// FS is the wrapped filesystem. Must be non-nil.
	FS FS

	ReadFileFn        func(path string) ([]byte, error)
	WriteFileAtomicFn func(path string, data []byte, perm os.FileMode) error
	ReadDirFn         func(path string) ([]os.DirEntry, error)
	MkdirAllFn        func(path string, perm os.FileMode) error
	StatFn            func(path string) (os.FileInfo, error)
	ExistsFn          func(path string) (bool, error)
	RemoveFn          func(path string) error
	RemoveAllFn       func(path string) error
	GetxattrFn        func(path, name string) ([]byte, error)
	SetxattrFn        func(path, name string, data []byte) error
	RemovexattrFn     func(path, name string) error
	CreationTimeFn    func(path string) (time.Time, error)
}

func (f *Fault) ReadFile(path string) ([]byte, error) {
	if f.ReadFileFn != nil {
		return f.ReadFileFn(path)
	}

	return f.FS.ReadFile(path)
}

func (f *Fault) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if f.WriteFileAtomicFn != nil {
		return f.WriteFileAtomicFn(path, data, perm)
	}

	return f.FS.WriteFileAtomic(path, data, perm)
}

func (f *Fault) ReadDir(path string) ([]os.DirEntry, error) {
	if f.ReadDirFn != nil {
		return f.ReadDirFn(path)
	}

	return f.FS.ReadDir(path)
}

func (f *Fault) MkdirAll(path string, perm os.FileMode) error {
	if f.MkdirAllFn != nil {
		return f.MkdirAllFn(path, perm)
	}

	return f.FS.MkdirAll(path, perm)
}

func (f *Fault) Stat(path string) (os.FileInfo, error) {
	if f.StatFn != nil {
		return f.StatFn(path)
	}

	return f.FS.Stat(path)
}

func (f *Fault) Exists(path string) (bool, error) {
	if f.ExistsFn != nil {
		return f.ExistsFn(path)
	}

	return f.FS.Exists(path)
}

func (f *Fault) Remove(path string) error {
	if f.RemoveFn != nil {
		return f.RemoveFn(path)
	}

	return f.FS.Remove(path)
}

func (f *Fault) RemoveAll(path string) error {
	if f.RemoveAllFn != nil {
		return f.RemoveAllFn(path)
	}

	return f.FS.RemoveAll(path)
}

func (f *Fault) Getxattr(path, name string) ([]byte, error) {
	if f.GetxattrFn != nil {
		return f.GetxattrFn(path, name)
	}

	return f.FS.Getxattr(path, name)
}

func (f *Fault) Setxattr(path, name string, data []byte) error {
	if f.SetxattrFn != nil {
		return f.SetxattrFn(path, name, data)
	}

	return f.FS.Setxattr(path, name, data)
}

func (f *Fault) Removexattr(path, name string) error {
	if f.RemovexattrFn != nil {
		return f.RemovexattrFn(path, name)
	}

	return f.FS.Removexattr(path, name)
}

func (f *Fault) CreationTime(path string) (time.Time, error) {
	if f.CreationTimeFn != nil {
		return f.CreationTimeFn(path)
	}

	return f.FS.CreationTime(path)
}

// Compile-time interface check.
var _ FS = (*Fault)(nil)
