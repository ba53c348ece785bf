package memory_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"simjudge/internal/compilecache/memory"
)

func TestGetOrInsertCachesResult(t *testing.T) {
	c := memory.New()
	var calls int64
	compile := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "/tmp/artifact", nil
	}

	for i := 0; i < 3; i++ {
		path, err := c.GetOrInsert(context.Background(), "key", time.Hour, compile)
		if err != nil {
			t.Fatalf("GetOrInsert: %v", err)
		}
		if path != "/tmp/artifact" {
			t.Errorf("path = %q, want /tmp/artifact", path)
		}
	}
	if calls != 1 {
		t.Errorf("compile called %d times, want 1", calls)
	}

	stats := c.Stats()
	if stats.Misses != 1 || stats.Hits != 2 {
		t.Errorf("stats = %+v, want 1 miss 2 hits", stats)
	}
}

func TestGetOrInsertSingleFlight(t *testing.T) {
	c := memory.New()
	var calls int64
	start := make(chan struct{})
	compile := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		<-start
		return "/tmp/artifact", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path, err := c.GetOrInsert(context.Background(), "shared", time.Hour, compile)
			if err != nil {
				t.Errorf("GetOrInsert: %v", err)
				return
			}
			results[i] = path
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(start)
	wg.Wait()

	if calls != 1 {
		t.Errorf("compile called %d times, want 1", calls)
	}
	for _, r := range results {
		if r != "/tmp/artifact" {
			t.Errorf("result = %q, want /tmp/artifact", r)
		}
	}
}

func TestGetOrInsertExpiresByTTL(t *testing.T) {
	c := memory.New()
	var calls int64
	compile := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "/tmp/artifact", nil
	}

	if _, err := c.GetOrInsert(context.Background(), "key", time.Millisecond, compile); err != nil {
		t.Fatalf("GetOrInsert: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := c.GetOrInsert(context.Background(), "key", time.Millisecond, compile); err != nil {
		t.Fatalf("GetOrInsert: %v", err)
	}
	if calls != 2 {
		t.Errorf("compile called %d times, want 2 (expired entry must recompile)", calls)
	}
}

func TestInvalidateForcesRecompile(t *testing.T) {
	c := memory.New()
	var calls int64
	compile := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "/tmp/artifact", nil
	}

	c.GetOrInsert(context.Background(), "key", time.Hour, compile)
	c.Invalidate("key")
	c.GetOrInsert(context.Background(), "key", time.Hour, compile)

	if calls != 2 {
		t.Errorf("compile called %d times, want 2 after invalidate", calls)
	}
}
