package cachyr

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultBaseDir returns the base directory under which named caches are
// created when [Options.BaseDir] is empty: $XDG_CACHE_HOME if set,
// otherwise ~/.cache, falling back to the system temp directory when no
// home directory can be determined.
//
// The env map is the process environment; tests pass their own.
func DefaultBaseDir(env map[string]string) string {
	if xdgCache := env["XDG_CACHE_HOME"]; xdgCache != "" {
		return xdgCache
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".cache")
	}

	return os.TempDir()
}

// environMap converts os.Environ() into a lookup map.
func environMap() map[string]string {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			env[key] = value
		}
	}

	return env
}
