package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("transcript text", "en", "abc123")
	k2 := Key("transcript text", "en", "abc123")
	if k1 != k2 {
		t.Errorf("Expected identical inputs to produce identical keys, got %q and %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "glosa:v1:") {
		t.Errorf("Expected key prefix glosa:v1:, got %q", k1)
	}
	if len(k1) != len("glosa:v1:")+64 {
		t.Errorf("Expected 64 hex chars after the prefix, got key length %d", len(k1))
	}

	if Key("transcript text", "en", "abc124") == k1 {
		t.Error("Expected a framebook hash change to change the key")
	}
	if Key("transcript text", "de", "abc123") == k1 {
		t.Error("Expected a language change to change the key")
	}
	// Joining with a separator must not allow boundary ambiguity.
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Expected distinct part boundaries to produce distinct keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss on empty cache")
	}

	if err := c.Set("k", []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found {
		t.Fatal("Expected hit after Set")
	}
	if string(val) != "payload" {
		t.Errorf("Expected payload, got %q", val)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after Delete")
	}

	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := c.Get("a"); found {
		t.Error("Expected miss after Clear")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss on empty cache")
	}

	key := Key("some transcript", "en", "fb")
	if err := c.Set(key, []byte("report"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get(key)
	if !found {
		t.Fatal("Expected hit after Set")
	}
	if string(val) != "report" {
		t.Errorf("Expected report, got %q", val)
	}

	// A fresh instance over the same directory sees the entry.
	c2 := NewDiskCache(dir, time.Hour)
	if _, found := c2.Get(key); !found {
		t.Error("Expected entry to persist across cache instances")
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected miss after Delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("k", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry to miss")
	}
	// Eviction removes the file itself.
	if _, err := os.Stat(filepath.Join(dir, "k.cache")); !os.IsNotExist(err) {
		t.Error("Expected expired entry file to be removed")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := os.WriteFile(filepath.Join(dir, "k.cache"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected corrupt entry to miss")
	}
}

func TestDiskCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)
	c.Set("a", []byte("1"), 0)
	c.Set("b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected cache directory to be removed")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer, as a previous process run would have.
	seed := NewDiskCache(dir, time.Hour)
	if err := seed.Set("k", []byte("persisted"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := c.Get("k")
	if !found {
		t.Fatal("Expected layered cache to fall through to disk")
	}
	if string(val) != "persisted" {
		t.Errorf("Expected persisted, got %q", val)
	}

	// The hit must now be served from memory.
	if _, found := c.memory.Get("k"); !found {
		t.Error("Expected disk hit to be promoted to the memory layer")
	}
}

func TestLayeredCache_SetAndDelete(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	if err := c.Set("k", []byte("both"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.memory.Get("k"); !found {
		t.Error("Expected memory layer to hold the value")
	}
	if _, found := c.disk.Get("k"); !found {
		t.Error("Expected disk layer to hold the value")
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after Delete")
	}
}
