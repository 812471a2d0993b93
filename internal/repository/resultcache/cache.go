// Package resultcache persists complete pipeline results on disk, one file
// per request hash.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lexhub/contractqa/internal/domain/answer"
	"github.com/lexhub/contractqa/internal/domain/query"
	"github.com/lexhub/contractqa/internal/metrics"
)

// keySeparator joins key components before hashing. The unit separator
// control byte cannot appear in a legitimate query or filter value.
const keySeparator = "\x1f"

// Cache is a best-effort disk cache for raw pipeline results. Lookups and
// writes never fail the surrounding search. There is no locking: concurrent
// identical requests may both compute and both write, which is tolerated
// since the content is identical.
type Cache struct {
	dir          string
	indexVersion string
	enabled      atomic.Bool
	logger       *zap.Logger
}

// Stats describes the current cache population.
type Stats struct {
	Entries     int     `json:"entries"`
	TotalBytes  int64   `json:"total_bytes"`
	OldestUnix  int64   `json:"oldest_unix,omitempty"`
	NewestUnix  int64   `json:"newest_unix,omitempty"`
	EstSavedSec float64 `json:"estimated_saved_seconds"`
	Enabled     bool    `json:"enabled"`
}

// estSecondsPerEntry is the assumed cost of one full retrieval+synthesis
// run, used only for the savings estimate in Stats.
const estSecondsPerEntry = 6.0

// New creates the cache rooted at dir, creating the directory on first use.
// indexVersion participates in every key so a reindexed corpus never serves
// stale answers.
func New(dir, indexVersion string, enabled bool, logger *zap.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	c := &Cache{dir: dir, indexVersion: indexVersion, logger: logger}
	c.enabled.Store(enabled)
	return c, nil
}

// Key derives the deterministic cache key for a request. Every component
// of the request that changes retrieval or synthesis output participates;
// min_relevance does not, since it only affects display downstream.
func (c *Cache) Key(req query.Request) string {
	f := req.Facets()
	parts := []string{
		req.Text(),
		f.Account,
		f.AccountType,
		f.DocumentType,
		f.SolutionLine,
		f.RelatedProduct,
		strconv.Itoa(req.TopK()),
		c.indexVersion,
	}
	h := sha256.Sum256([]byte(strings.Join(parts, keySeparator)))
	return hex.EncodeToString(h[:])
}

// GetOrCompute returns the cached result for req, or runs compute and
// best-effort persists its output. The second return reports a cache hit.
// When the cache is disabled, compute always runs and nothing is read or
// written; existing entries are left untouched.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	req query.Request,
	compute func(context.Context) (answer.Raw, error),
) (answer.Raw, bool, error) {
	if !c.enabled.Load() {
		metrics.ResultCacheTotal.WithLabelValues("bypass").Inc()
		raw, err := compute(ctx)
		return raw, false, err
	}

	key := c.Key(req)

	if raw, ok := c.read(key); ok {
		metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
		return raw, true, nil
	}
	metrics.ResultCacheTotal.WithLabelValues("miss").Inc()

	raw, err := compute(ctx)
	if err != nil {
		return answer.Raw{}, false, err
	}

	c.write(key, raw)
	return raw, false, nil
}

// SetEnabled toggles cache reads and writes at runtime. Disabling does not
// delete existing entries.
func (c *Cache) SetEnabled(v bool) {
	c.enabled.Store(v)
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool {
	return c.enabled.Load()
}

// Stats walks the cache directory and summarizes its contents.
func (c *Cache) Stats() Stats {
	st := Stats{Enabled: c.enabled.Load()}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn("Failed to read cache dir", zap.String("dir", c.dir), zap.Error(err))
		return st
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		st.Entries++
		st.TotalBytes += info.Size()
		mod := info.ModTime().Unix()
		if st.OldestUnix == 0 || mod < st.OldestUnix {
			st.OldestUnix = mod
		}
		if mod > st.NewestUnix {
			st.NewestUnix = mod
		}
	}

	st.EstSavedSec = float64(st.Entries) * estSecondsPerEntry
	return st
}

// Clear removes entries older than the given age. A zero age removes
// everything. Returns the number of entries removed.
func (c *Cache) Clear(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if olderThan > 0 {
			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			c.logger.Warn("Failed to remove cache entry", zap.String("entry", e.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func (c *Cache) read(key string) (answer.Raw, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read cache entry", zap.String("key", key), zap.Error(err))
		}
		return answer.Raw{}, false
	}

	var raw answer.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("Corrupt cache entry", zap.String("key", key), zap.Error(err))
		return answer.Raw{}, false
	}
	return raw, true
}

// write persists an entry atomically via temp file and rename. Failures
// are logged and swallowed.
func (c *Cache) write(key string, raw answer.Raw) {
	data, err := json.Marshal(raw)
	if err != nil {
		c.logger.Warn("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	tmp, err := os.CreateTemp(c.dir, key+".tmp-*")
	if err != nil {
		c.logger.Warn("Failed to create cache temp file", zap.String("key", key), zap.Error(err))
		return
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		c.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		c.logger.Warn("Failed to close cache temp file", zap.String("key", key), zap.Error(err))
		return
	}

	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		c.logger.Warn("Failed to publish cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
