// Package disk implements a persistent, size-bounded compile cache.
// Artifacts are stored zstd-compressed under a content-hash blob name
// and committed via write-to-temp-then-rename, the same atomic-commit
// discipline the teacher's on-disk data pack cache uses, so a reader
// never observes a half-written blob. Eviction is LRU by total
// compressed size, mirroring the teacher's cache-size accounting.
package disk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"simjudge/internal/compilecache"
	apperrors "simjudge/pkg/errors"
)

type indexEntry struct {
	BlobPath   string
	Size       int64
	LastAccess time.Time
	ExpiresAt  time.Time
}

// Cache is a persistent compile cache rooted at a directory on disk.
type Cache struct {
	root     string
	maxBytes int64

	mu       sync.Mutex
	index    map[string]*indexEntry
	inFlight map[string]*sync.WaitGroup
	hits     int64
	misses   int64
}

// New creates a disk cache rooted at dir, evicting the least-recently
// used entries once total blob size exceeds maxBytes (0 disables the
// size cap).
func New(dir string, maxBytes int64) (*Cache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "blobs"), 0755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.IOError)
	}
	if err := os.MkdirAll(filepath.Join(dir, "work"), 0755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.IOError)
	}
	return &Cache{
		root:     dir,
		maxBytes: maxBytes,
		index:    make(map[string]*indexEntry),
		inFlight: make(map[string]*sync.WaitGroup),
	}, nil
}

// GetOrInsert implements compilecache.Cache.
func (c *Cache) GetOrInsert(ctx context.Context, key string, ttl time.Duration, compile compilecache.CompileFunc) (string, error) {
	for {
		c.mu.Lock()
		if e, ok := c.index[key]; ok && (e.ExpiresAt.IsZero() || time.Now().Before(e.ExpiresAt)) {
			e.LastAccess = time.Now()
			blobPath := e.BlobPath
			c.hits++
			c.mu.Unlock()
			return c.materialize(key, blobPath)
		}
		if wg, building := c.inFlight[key]; building {
			c.mu.Unlock()
			wg.Wait()
			continue
		}
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c.inFlight[key] = wg
		c.misses++
		c.mu.Unlock()

		artifactPath, err := compile(ctx)

		var outPath string
		var commitErr error
		if err == nil {
			outPath, commitErr = c.commit(key, artifactPath, ttl)
		}

		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
		wg.Done()

		if err != nil {
			return "", err
		}
		if commitErr != nil {
			return "", commitErr
		}
		return outPath, nil
	}
}

// commit zstd-compresses artifactPath into a blob named after key and
// atomically installs it via rename, then evicts if oversize.
func (c *Cache) commit(key, artifactPath string, ttl time.Duration) (string, error) {
	blobPath := filepath.Join(c.root, "blobs", blobName(key))
	tmp, err := os.CreateTemp(filepath.Join(c.root, "blobs"), ".tmp-*")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	tmpPath := tmp.Name()

	src, err := os.Open(artifactPath)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		src.Close()
		tmp.Close()
		os.Remove(tmpPath)
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	_, copyErr := io.Copy(enc, src)
	src.Close()
	closeErr := enc.Close()
	tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if copyErr != nil {
			return "", apperrors.Wrap(copyErr, apperrors.CompileCacheError)
		}
		return "", apperrors.Wrap(closeErr, apperrors.CompileCacheError)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	if err := os.Rename(tmpPath, blobPath); err != nil {
		os.Remove(tmpPath)
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.index[key] = &indexEntry{BlobPath: blobPath, Size: info.Size(), LastAccess: time.Now(), ExpiresAt: expiresAt}
	c.evictLocked(key)
	c.mu.Unlock()

	return c.materialize(key, blobPath)
}

// materialize decompresses blobPath into a fresh executable temp file
// the caller owns; the blob itself always stays compressed on disk.
func (c *Cache) materialize(key, blobPath string) (string, error) {
	src, err := os.Open(blobPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	defer src.Close()

	dec, err := zstd.NewReader(src)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	defer dec.Close()

	out, err := os.CreateTemp(filepath.Join(c.root, "work"), blobName(key)+"-*")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	out.Close()
	if err := os.Chmod(out.Name(), 0755); err != nil {
		return "", apperrors.Wrap(err, apperrors.CompileCacheError)
	}
	return out.Name(), nil
}

// evictLocked removes least-recently-used blobs until total size fits
// maxBytes. The entry under keep (the one just committed) is never
// removed, so it stays even when it alone exceeds maxBytes. Caller must
// hold c.mu.
func (c *Cache) evictLocked(keep string) {
	if c.maxBytes <= 0 {
		return
	}
	var total int64
	keys := make([]string, 0, len(c.index))
	for k, e := range c.index {
		total += e.Size
		keys = append(keys, k)
	}
	if total <= c.maxBytes {
		return
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.index[keys[i]].LastAccess.Before(c.index[keys[j]].LastAccess)
	})
	for _, k := range keys {
		if total <= c.maxBytes {
			break
		}
		if k == keep {
			continue
		}
		e := c.index[k]
		os.Remove(e.BlobPath)
		total -= e.Size
		delete(c.index, k)
	}
}

// Stats implements compilecache.Cache.
func (c *Cache) Stats() compilecache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var size int64
	for _, e := range c.index {
		size += e.Size
	}
	return compilecache.Stats{Entries: len(c.index), Hits: c.hits, Misses: c.misses, SizeBytes: size}
}

func blobName(key string) string {
	safe := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		ch := key[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			safe = append(safe, ch)
		default:
			safe = append(safe, '_')
		}
	}
	return string(safe) + ".zst"
}
