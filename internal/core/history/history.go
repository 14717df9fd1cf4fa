// Package history tracks the Last-Modified timestamp of every upstream URL
// fetched, so that sync can issue conditional requests. The cache is a
// two-column csv file (url, time) rewritten atomically after each sync.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// History is the url → last-modified map. Sync workers share one instance;
// all access goes through the mutex.
type History struct {
	mu      sync.Mutex
	entries map[string]string
}

// Load reads the cache file. A missing file yields an empty cache.
func Load(path string) (*History, error) {
	h := &History{entries: make(map[string]string)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	for _, rec := range records {
		if len(rec) != 2 || rec[0] == "url" {
			continue
		}
		h.entries[rec[0]] = rec[1]
	}
	return h, nil
}

// Get returns the recorded Last-Modified value for a URL, empty if never
// fetched.
func (h *History) Get(url string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[url]
}

// Set records the Last-Modified value returned for a URL.
func (h *History) Set(url, time string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[url] = time
}

// Write rewrites the cache file atomically: a temp file in the same
// directory is renamed over the target so a crash never truncates it.
func (h *History) Write(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	urls := make([]string, 0, len(h.entries))
	for url := range h.entries {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	tmp, err := os.CreateTemp(filepath.Dir(path), "tba_history_*.csv")
	if err != nil {
		return fmt.Errorf("temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"url", "time"}); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	for _, url := range urls {
		if err := w.Write([]string{url, h.entries[url]}); err != nil {
			tmp.Close()
			return fmt.Errorf("write history: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
