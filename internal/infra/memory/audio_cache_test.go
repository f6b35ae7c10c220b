package memory

import (
	"context"
	"testing"
	"time"
)

func TestAudioCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	cache := NewAudioCache(time.Minute, 2)

	cache.Set(ctx, "simon-a", []byte("a"))
	cache.Set(ctx, "simon-b", []byte("b"))
	cache.Set(ctx, "lena-c", []byte("c"))

	if _, ok := cache.Get(ctx, "simon-a"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if got, ok := cache.Get(ctx, "lena-c"); !ok || string(got) != "c" {
		t.Fatalf("expected newest entry, got %q ok=%v", got, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestAudioCacheExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewAudioCache(time.Minute, 10)
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	cache.Set(ctx, "simon-a", []byte("a"))
	if _, ok := cache.Get(ctx, "simon-a"); !ok {
		t.Fatalf("expected fresh entry")
	}
	now = now.Add(61 * time.Second)
	if _, ok := cache.Get(ctx, "simon-a"); ok {
		t.Fatalf("expected expired entry")
	}
	if cache.Len() != 0 {
		t.Fatalf("expired entry must be dropped")
	}
}

func TestAudioCacheIgnoresEmptyAudio(t *testing.T) {
	cache := NewAudioCache(time.Minute, 2)
	cache.Set(context.Background(), "simon-a", nil)
	if cache.Len() != 0 {
		t.Fatalf("empty clip must not be cached")
	}
}

func TestAudioCacheIsolatesCallerSlices(t *testing.T) {
	ctx := context.Background()
	cache := NewAudioCache(time.Minute, 2)

	clip := []byte("mp3")
	cache.Set(ctx, "simon-a", clip)
	clip[0] = 'X'

	got, _ := cache.Get(ctx, "simon-a")
	got[1] = 'Y'

	if again, _ := cache.Get(ctx, "simon-a"); string(again) != "mp3" {
		t.Fatalf("cache entry changed through a caller slice: %q", again)
	}
}
