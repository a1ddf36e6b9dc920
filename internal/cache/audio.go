// Package cache is the content-addressed store of previously synthesized
// narration. Entries are keyed by (voice, text) so a preview never pays for
// synthesis that already happened.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"

	"github.com/lessonforge/lessonforge/internal/timing"
)

// Cache errors.
var (
	// ErrItemTooLarge is returned when an entry exceeds the cache capacity.
	ErrItemTooLarge = errors.New("entry too large for cache")
)

const (
	audioFileName      = "audio.mp3"
	compressedFileName = "audio.mp3.zst"
	metaFileName       = "meta.json"

	// compressThreshold skips compression for tiny payloads.
	compressThreshold = 1024
)

// Key derives the cache key for a (voice, narration) pair.
func Key(voiceID, text string) string {
	sum := blake3.Sum256([]byte(voiceID + "::" + text))
	return hex.EncodeToString(sum[:])
}

// Entry is one cached synthesis result. Words is nil when the entry was
// produced through the plain (non-timestamped) fallback.
type Entry struct {
	Audio []byte
	Words []timing.WordStamp
}

// Stats holds cache performance metrics.
type Stats struct {
	Capacity  int64
	Size      int64
	ItemCount int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// metaFile is the on-disk metadata beside each audio file.
type metaFile struct {
	WordTimestamps []timing.WordStamp `json:"wordTimestamps,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	LastAccess     time.Time          `json:"lastAccess"`
	Compressed     bool               `json:"compressed"`
	SizeBytes      int64              `json:"sizeBytes"`
}

type indexEntry struct {
	key        string
	size       int64
	lastAccess time.Time
	compressed bool
}

// AudioCache is a disk-backed store with one subdirectory per key, holding
// the audio payload and a metadata file with the word timestamps. Growth is
// bounded: least-recently-used entries are evicted once total size exceeds
// the configured capacity.
type AudioCache struct {
	dir      string
	capacity int64
	size     int64

	index map[string]*indexEntry

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.Mutex
	stats Stats
}

// Open loads (or creates) an audio cache rooted at dir. A capacity of zero
// means 1 GiB. compressionLevel <= 0 disables compression of new entries.
func Open(dir string, capacity int64, compressionLevel int) (*AudioCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}
	if capacity == 0 {
		capacity = 1 << 30
	}

	c := &AudioCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*indexEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		c.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
		}
	}
	var err error
	c.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
	}

	if err := c.loadIndex(); err != nil {
		// Unreadable entries are skipped, never fatal.
		c.index = make(map[string]*indexEntry)
	}
	return c, nil
}

// loadIndex rebuilds the in-memory index by scanning entry directories.
func (c *AudioCache) loadIndex() error {
	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		meta, err := c.readMeta(d.Name())
		if err != nil {
			continue
		}
		c.index[d.Name()] = &indexEntry{
			key:        d.Name(),
			size:       meta.SizeBytes,
			lastAccess: meta.LastAccess,
			compressed: meta.Compressed,
		}
		c.size += meta.SizeBytes
	}
	c.stats.Size = c.size
	c.stats.ItemCount = int64(len(c.index))
	return nil
}

func (c *AudioCache) entryDir(key string) string {
	return filepath.Join(c.dir, key)
}

func (c *AudioCache) readMeta(key string) (*metaFile, error) {
	data, err := os.ReadFile(filepath.Join(c.entryDir(key), metaFileName))
	if err != nil {
		return nil, err
	}
	var meta metaFile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *AudioCache) writeMeta(key string, meta *metaFile) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.entryDir(key), metaFileName), data, 0o644)
}

// Get returns the cached entry for key, or miss. Access bumps the entry in
// the LRU order.
func (c *AudioCache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ie, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	meta, err := c.readMeta(key)
	if err != nil {
		c.dropLocked(key)
		c.stats.Misses++
		return nil, false
	}

	name := audioFileName
	if ie.compressed {
		name = compressedFileName
	}
	audio, err := os.ReadFile(filepath.Join(c.entryDir(key), name))
	if err != nil {
		c.dropLocked(key)
		c.stats.Misses++
		return nil, false
	}
	if ie.compressed {
		audio, err = c.decoder.DecodeAll(audio, nil)
		if err != nil {
			c.dropLocked(key)
			c.stats.Misses++
			return nil, false
		}
	}

	now := time.Now()
	ie.lastAccess = now
	meta.LastAccess = now
	_ = c.writeMeta(key, meta)

	c.stats.Hits++
	return &Entry{Audio: audio, Words: meta.WordTimestamps}, true
}

// Contains reports whether key is cached without touching LRU order.
func (c *AudioCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[key]
	return ok
}

// Put stores an entry unconditionally, overwriting any prior entry for the
// same key and evicting least-recently-used entries to stay within capacity.
func (c *AudioCache) Put(key string, e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := e.Audio
	compressed := false
	if c.encoder != nil && len(e.Audio) > compressThreshold {
		if z := c.encoder.EncodeAll(e.Audio, nil); len(z) < len(e.Audio) {
			payload = z
			compressed = true
		}
	}
	size := int64(len(payload))
	if size > c.capacity {
		return ErrItemTooLarge
	}

	if _, ok := c.index[key]; ok {
		c.dropLocked(key)
	}
	for c.size+size > c.capacity && len(c.index) > 0 {
		c.evictOldestLocked()
	}

	dir := c.entryDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create entry directory: %w", err)
	}

	name := audioFileName
	if compressed {
		name = compressedFileName
	}
	if err := os.WriteFile(filepath.Join(dir, name), payload, 0o644); err != nil {
		return fmt.Errorf("unable to write audio: %w", err)
	}

	now := time.Now()
	meta := &metaFile{
		WordTimestamps: e.Words,
		CreatedAt:      now,
		LastAccess:     now,
		Compressed:     compressed,
		SizeBytes:      size,
	}
	if err := c.writeMeta(key, meta); err != nil {
		return fmt.Errorf("unable to write metadata: %w", err)
	}

	c.index[key] = &indexEntry{key: key, size: size, lastAccess: now, compressed: compressed}
	c.size += size
	c.stats.Size = c.size
	c.stats.ItemCount = int64(len(c.index))
	return nil
}

// dropLocked removes an entry from disk and index. Lock must be held.
func (c *AudioCache) dropLocked(key string) {
	if ie, ok := c.index[key]; ok {
		c.size -= ie.size
		delete(c.index, key)
	}
	_ = os.RemoveAll(c.entryDir(key))
}

// evictOldestLocked removes the least recently used entry. Lock must be held.
func (c *AudioCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	for key, ie := range c.index {
		if oldestKey == "" || ie.lastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = ie.lastAccess
		}
	}
	if oldestKey != "" {
		c.dropLocked(oldestKey)
		c.stats.Evictions++
	}
}

// Clear removes every entry.
func (c *AudioCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.index {
		if err := os.RemoveAll(c.entryDir(key)); err != nil {
			return fmt.Errorf("unable to remove entry: %w", err)
		}
	}
	c.index = make(map[string]*indexEntry)
	c.size = 0
	c.stats.Size = 0
	c.stats.ItemCount = 0
	return nil
}

// Stats returns a snapshot of the cache metrics.
func (c *AudioCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.size
	s.ItemCount = int64(len(c.index))
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
	return s
}

// Dir returns the cache root directory.
func (c *AudioCache) Dir() string { return c.dir }
