package cachyr

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// requireXattrSupport skips the test when the filesystem backing dir does
// not support user extended attributes (e.g. tmpfs without xattr support).
func requireXattrSupport(t *testing.T, dir string) {
	t.Helper()

	probe := filepath.Join(dir, ".xattr-probe")

	err := os.WriteFile(probe, nil, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	defer func() { _ = os.Remove(probe) }()

	err = unix.Setxattr(probe, "user.cachyr.probe", []byte("1"), 0)
	if err == unix.ENOTSUP {
		t.Skipf("filesystem at %s does not support user xattrs", dir)
	}

	if err != nil {
		t.Fatal(err)
	}
}

// testLogger returns a logger that swallows all output, keeping the
// swallow-and-log paths exercised without polluting test output.
func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}
