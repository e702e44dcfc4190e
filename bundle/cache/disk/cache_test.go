package disk

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCachePutGet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	content := []byte("Default__Hero_C")
	sum := sha256.Sum256(content)

	if putErr := c.Put(sum[:], content); putErr != nil {
		t.Fatalf("Put() error = %v", putErr)
	}

	got, ok := c.Get(sum[:])
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("Get() content = %q, want %q", got, content)
	}
	if c.SizeBytes() != int64(len(content)) {
		t.Fatalf("SizeBytes() = %d, want %d", c.SizeBytes(), len(content))
	}

	hexHash := hex.EncodeToString(sum[:])
	path := filepath.Join(dir, hexHash[:defaultShardPrefixLen], hexHash)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected cache file at %s: %v", path, err)
	}
}

func TestCacheShardDisable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, WithShardPrefixLen(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	content := []byte("flat")
	sum := sha256.Sum256(content)
	if err := c.Put(sum[:], content); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	hexHash := hex.EncodeToString(sum[:])
	path := filepath.Join(dir, hexHash)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected cache file at %s: %v", path, err)
	}
}

func TestNewInvalid(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") error = nil, want error")
	}
	if _, err := New(t.TempDir(), WithMaxBytes(-1)); err == nil {
		t.Fatal("New(WithMaxBytes(-1)) error = nil, want error")
	}
	if _, err := New(t.TempDir(), WithShardPrefixLen(-1)); err == nil {
		t.Fatal("New(WithShardPrefixLen(-1)) error = nil, want error")
	}
}

func TestCacheAlreadyCached(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	content := []byte("cached twice")
	sum := sha256.Sum256(content)
	for range 2 {
		if putErr := c.Put(sum[:], content); putErr != nil {
			t.Fatalf("Put() error = %v", putErr)
		}
	}
	if c.SizeBytes() != int64(len(content)) {
		t.Fatalf("SizeBytes() = %d, want %d after duplicate put", c.SizeBytes(), len(content))
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	content := []byte("short lived")
	sum := sha256.Sum256(content)
	if err := c.Put(sum[:], content); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := c.Delete(sum[:]); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := c.Get(sum[:]); ok {
		t.Fatal("Get() ok = true after Delete")
	}
	if c.SizeBytes() != 0 {
		t.Fatalf("SizeBytes() = %d, want 0", c.SizeBytes())
	}
	if err := c.Delete(sum[:]); err != nil {
		t.Fatalf("Delete() of missing entry error = %v", err)
	}
}

func TestCacheMaxBytesEvictsOldest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, WithMaxBytes(10))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first := []byte("aaaaaa")
	second := []byte("bbbbbb")
	firstSum := sha256.Sum256(first)
	secondSum := sha256.Sum256(second)

	if err := c.Put(firstSum[:], first); err != nil {
		t.Fatalf("Put(first) error = %v", err)
	}
	hexHash := hex.EncodeToString(firstSum[:])
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, hexHash[:2], hexHash), old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if err := c.Put(secondSum[:], second); err != nil {
		t.Fatalf("Put(second) error = %v", err)
	}
	if _, ok := c.Get(firstSum[:]); ok {
		t.Fatal("first entry survived eviction")
	}
	if _, ok := c.Get(secondSum[:]); !ok {
		t.Fatal("second entry missing")
	}
	if c.SizeBytes() != int64(len(second)) {
		t.Fatalf("SizeBytes() = %d, want %d", c.SizeBytes(), len(second))
	}
}

func TestCacheSkipsOversized(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), WithMaxBytes(4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	content := []byte("too large for the cache")
	sum := sha256.Sum256(content)
	if err := c.Put(sum[:], content); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := c.Get(sum[:]); ok {
		t.Fatal("oversized content was cached")
	}
}

func TestNewCountsExistingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	content := []byte("persisted")
	sum := sha256.Sum256(content)
	if err := c.Put(sum[:], content); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	if reopened.SizeBytes() != int64(len(content)) {
		t.Fatalf("SizeBytes() = %d, want %d", reopened.SizeBytes(), len(content))
	}
	freed, err := reopened.Prune(0)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if freed != int64(len(content)) || reopened.SizeBytes() != 0 {
		t.Fatalf("Prune() freed %d, size %d", freed, reopened.SizeBytes())
	}
}
