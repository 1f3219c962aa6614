package storage

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MinPageSize is the trimmed size a detail page must exceed to be cached.
// Smaller responses are error or expired-session pages.
const MinPageSize = 500

// DefaultProgressFile is where the redirect resolver keeps its checkpoint
const DefaultProgressFile = "progress.json"

// ExpandPath expands a leading ~/ to the home directory
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Cache stores raw HTML pages on disk, one file per URL. Entries never expire.
type Cache struct {
	dir string
}

// New creates a Cache rooted at dir, creating the directory when needed
func New(dir string) (*Cache, error) {
	dir, err := ExpandPath(dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// Key returns the file name used for a URL
func Key(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:]) + ".html"
}

func (c *Cache) path(url string) string {
	return filepath.Join(c.dir, Key(url))
}

// Get returns the cached page for url. ok is false when nothing is cached.
func (c *Cache) Get(url string) (page string, ok bool, err error) {
	data, err := os.ReadFile(c.path(url))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	return string(data), true, nil
}

// Put stores a page for url, replacing any earlier entry
func (c *Cache) Put(url, page string) error {
	if err := os.WriteFile(c.path(url), []byte(page), 0644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Cacheable reports whether a page is large enough to be a real detail page
func Cacheable(page string) bool {
	return len(strings.TrimSpace(page)) > MinPageSize
}

type progress struct {
	LastIndex int `json:"last_index"`
}

// Progress is a checkpoint file holding the index of the next row to process
type Progress struct {
	path string
}

// NewProgress returns a Progress backed by path
func NewProgress(path string) (*Progress, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return &Progress{path: path}, nil
}

// Path returns the checkpoint file path
func (p *Progress) Path() string {
	return p.path
}

// Load returns the stored index. exists is false when there is no checkpoint,
// in which case the index is 0.
func (p *Progress) Load() (index int, exists bool, err error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reading progress: %w", err)
	}

	var pr progress
	if err := json.Unmarshal(data, &pr); err != nil {
		return 0, true, fmt.Errorf("parsing progress: %w", err)
	}
	if pr.LastIndex < 0 {
		pr.LastIndex = 0
	}

	return pr.LastIndex, true, nil
}

// Save overwrites the checkpoint with index
func (p *Progress) Save(index int) error {
	data, err := json.Marshal(progress{LastIndex: index})
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating progress directory: %w", err)
		}
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}

	return nil
}

// Reset removes the checkpoint
func (p *Progress) Reset() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing progress: %w", err)
	}
	return nil
}
