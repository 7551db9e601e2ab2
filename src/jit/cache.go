package jit

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cespare/xxhash/v2"
)

// CacheKey is a content address over everything that can change a
// compiled module's bytes: the source text, the host target triple, the
// feature string the target machine is configured with, and whether the optimizer
// ran — avoiding recompiling unchanged source on repeated --run invocations
// during development.
type CacheKey struct {
	Source   string
	Target   string
	Features string
	Optimize bool
}

// Digest returns the cache key's hex-encoded xxhash digest, used as the
// cache entry's filename.
func (k CacheKey) Digest() string {
	h := xxhash.New()
	h.WriteString(k.Source)
	h.WriteString("\x00")
	h.WriteString(k.Target)
	h.WriteString("\x00")
	h.WriteString(k.Features)
	h.WriteString("\x00")
	if k.Optimize {
		h.WriteString("opt")
	} else {
		h.WriteString("noopt")
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a content-addressed store of compiled LLVM bitcode, keyed by
// CacheKey.Digest, rooted at a directory under the user's cache dir.
type Cache struct {
	dir string
}

// OpenCache opens (creating if necessary) the default on-disk cache
// directory. Disabled entirely by the --no-cache flag, in which case
// callers simply never construct one.
func OpenCache() (*Cache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "ea", "jit-cache-"+runtime.GOARCH)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(key CacheKey) string {
	return filepath.Join(c.dir, key.Digest()+".bc")
}

// Load returns the cached bitcode for key, if present.
func (c *Cache) Load(key CacheKey) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Store writes bitcode to the cache under key.
func (c *Cache) Store(key CacheKey, bitcode []byte) error {
	return os.WriteFile(c.path(key), bitcode, 0o644)
}
