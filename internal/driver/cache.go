package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/xyproto/env/v2"

	"sdl3gen/internal/emit"
	"sdl3gen/internal/project"
)

// Bump when CachePayload changes shape.
const genCacheSchemaVersion uint16 = 1

// GenCache remembers, per output directory, the input fingerprint and the
// files of the last successful generation. Safe for concurrent use.
type GenCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is one cache entry.
type CachePayload struct {
	Schema      uint16
	Fingerprint project.Digest
	Output      string
	Files       []string // slash paths relative to Output
	FileHashes  []project.Digest
	Generated   time.Time
}

// OpenGenCache opens the cache under $XDG_CACHE_HOME/<app> or
// ~/.cache/<app>.
func OpenGenCache(app string) (*GenCache, error) {
	base := env.Str("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenGenCacheAt(filepath.Join(base, app))
}

// OpenGenCacheAt opens a cache rooted at dir.
func OpenGenCacheAt(dir string) (*GenCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &GenCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *GenCache) Dir() string { return c.dir }

func (c *GenCache) pathFor(output string) string {
	key := sha256.Sum256([]byte(filepath.Clean(output)))
	return filepath.Join(c.dir, "outputs", hex.EncodeToString(key[:16])+".mp")
}

// PayloadFor describes out as committed to dir.
func PayloadFor(fp project.Digest, dir string, out *emit.Output) *CachePayload {
	p := &CachePayload{
		Schema:      genCacheSchemaVersion,
		Fingerprint: fp,
		Output:      filepath.Clean(dir),
		Generated:   time.Now().UTC(),
	}
	for _, f := range out.Files {
		p.Files = append(p.Files, f.Path)
		p.FileHashes = append(p.FileHashes, sha256.Sum256(f.Data))
	}
	return p
}

// Put stores payload, replacing the entry for its output directory.
func (c *GenCache) Put(payload *CachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(payload.Output)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the entry for output.
func (c *GenCache) Get(output string, out *CachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(filepath.Clean(output)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == genCacheSchemaVersion, nil
}

// Fresh reports whether output was generated from fp and every recorded
// file is still on disk unchanged.
func (c *GenCache) Fresh(fp project.Digest, output string) (bool, error) {
	var p CachePayload
	ok, err := c.Get(output, &p)
	if err != nil || !ok || p.Fingerprint != fp {
		return false, err
	}
	for i, rel := range p.Files {
		data, err := os.ReadFile(filepath.Join(p.Output, filepath.FromSlash(rel)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, err
		}
		if project.Digest(sha256.Sum256(data)) != p.FileHashes[i] {
			return false, nil
		}
	}
	return true, nil
}

// DropAll empties the cache.
func (c *GenCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
