// Package cachyr provides a persistent, filesystem-backed key-value
// cache with optional per-entry expiration.
//
// Every entry is one regular file in the cache directory. The logical
// key and the expiration instant are carried as extended attributes on
// the file, not in its content, so the on-disk directory is the only
// source of truth: the in-memory key index is rebuilt by scanning the
// directory whenever a cache is opened, and directories written by the
// legacy filename-as-key scheme are migrated in place during that scan.
//
// # Basic Usage
//
//	cache, err := cachyr.Open("weather", cachyr.BytesCodec{}, cachyr.Options{})
//	if err != nil {
//	    // only invalid arguments fail Open
//	}
//
//	cache.Set("weather/oslo", []byte("23C"))
//	cache.SetWithExpiry("weather/bergen", []byte("18C"), time.Now().Add(time.Hour))
//
//	value, ok := cache.Get("weather/oslo")
//
// # Error Handling
//
// After Open, nothing fails loudly. I/O, codec and attribute problems
// are logged (logrus) and surface only as an absent value or a skipped
// write. A cache whose directory cannot be created degrades to an
// always-empty store instead of crashing the host process.
//
// # Concurrency
//
// A Cache serializes all operations behind one mutex. Sweeping of
// expired entries is amortized into ordinary operations; there are no
// background goroutines. Two Cache instances (or processes) pointed at
// the same directory are not coordinated.
package cachyr
