package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_GetPut(t *testing.T) {
	cache, err := New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	url := "http://www.volksfestundkirmes.de/veranstaltungdetails.php?id=42"

	_, ok, err := cache.Get(url)
	require.NoError(t, err)
	if ok {
		t.Fatal("Get() on empty cache should report a miss")
	}

	require.NoError(t, cache.Put(url, "<html>Kirmes</html>"))

	page, ok, err := cache.Get(url)
	require.NoError(t, err)
	if !ok || page != "<html>Kirmes</html>" {
		t.Errorf("Get() = %q, %v; want cached page", page, ok)
	}

	if _, err := os.Stat(filepath.Join(cache.Dir(), Key(url))); err != nil {
		t.Errorf("cache file not found: %v", err)
	}
}

func TestKey(t *testing.T) {
	// md5("abc")
	if got := Key("abc"); got != "900150983cd24fb0d6963f7d28e17f72.html" {
		t.Errorf("Key() = %q", got)
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		name string
		page string
		want bool
	}{
		{"empty", "", false},
		{"exactly the limit", strings.Repeat("x", MinPageSize), false},
		{"padding does not count", "  " + strings.Repeat("x", MinPageSize) + "\n\n", false},
		{"real page", strings.Repeat("x", MinPageSize+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cacheable(tt.page); got != tt.want {
				t.Errorf("Cacheable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	p, err := NewProgress(filepath.Join(t.TempDir(), "progress.json"))
	require.NoError(t, err)

	index, exists, err := p.Load()
	require.NoError(t, err)
	if exists || index != 0 {
		t.Errorf("Load() without file = %d, %v; want 0, false", index, exists)
	}

	require.NoError(t, p.Save(40))

	data, err := os.ReadFile(p.Path())
	require.NoError(t, err)
	if string(data) != `{"last_index":40}` {
		t.Errorf("progress file = %s", data)
	}

	index, exists, err = p.Load()
	require.NoError(t, err)
	if !exists || index != 40 {
		t.Errorf("Load() = %d, %v; want 40, true", index, exists)
	}

	require.NoError(t, p.Reset())
	if _, exists, _ := p.Load(); exists {
		t.Error("Reset() should remove the checkpoint")
	}
}

func TestProgress_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("{kaputt"), 0644))

	p, err := NewProgress(path)
	require.NoError(t, err)

	if _, _, err := p.Load(); err == nil {
		t.Error("Load() should fail on a corrupt file")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandPath("~/volksfeste/cache")
	require.NoError(t, err)
	if got != filepath.Join(home, "volksfeste", "cache") {
		t.Errorf("ExpandPath() = %q", got)
	}

	got, _ = ExpandPath("cache")
	if got != "cache" {
		t.Errorf("ExpandPath(relative) = %q", got)
	}
}
