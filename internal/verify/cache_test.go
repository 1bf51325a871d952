package verify

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := NewCache(time.Minute)

	verdict := Verdict{URL: "https://example.com/", RiskScore: 12}
	c.Set("https://example.com/", verdict)

	got, ok := c.Get("https://example.com/")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.RiskScore != 12 {
		t.Errorf("expected risk score 12, got %d", got.RiskScore)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := NewCache(time.Minute)

	if _, ok := c.Get("https://never-stored.example/"); ok {
		t.Fatal("expected cache miss")
	}

	stats := c.Stats()
	if stats.Misses != 1 || stats.Hits != 0 {
		t.Errorf("expected 1 miss / 0 hits, got %+v", stats)
	}
}

func TestCache_KeysAreNotNormalized(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("https://example.com/", Verdict{URL: "https://example.com/"})

	if _, ok := c.Get("https://EXAMPLE.com/"); ok {
		t.Fatal("different spellings must be independent keys")
	}
	if _, ok := c.Get("https://example.com"); ok {
		t.Fatal("trailing slash variant must be an independent key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("https://example.com/", Verdict{URL: "https://example.com/"})
	if _, ok := c.Get("https://example.com/"); !ok {
		t.Fatal("fresh entry must be a hit")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.Get("https://example.com/"); ok {
		t.Fatal("expired entry must behave as absent")
	}
	if keys := c.Stats().Keys; keys != 0 {
		t.Errorf("expired entry should be dropped lazily, got %d keys", keys)
	}
}

func TestCache_SetRefreshesTTL(t *testing.T) {
	c := NewCache(time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("https://example.com/", Verdict{})
	current = current.Add(45 * time.Second)
	c.Set("https://example.com/", Verdict{RiskScore: 5})
	current = current.Add(45 * time.Second)

	got, ok := c.Get("https://example.com/")
	if !ok {
		t.Fatal("refreshed entry must still be live")
	}
	if got.RiskScore != 5 {
		t.Errorf("expected refreshed verdict, got %+v", got)
	}
}

func TestCache_FlushAll(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", Verdict{})
	c.Set("b", Verdict{})
	c.Get("a")

	c.FlushAll()

	if keys := c.Stats().Keys; keys != 0 {
		t.Errorf("expected empty cache, got %d keys", keys)
	}
	if hits := c.Stats().Hits; hits != 1 {
		t.Errorf("flush must preserve counters, got %d hits", hits)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("flushed entry must be gone")
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	c := NewCache(0)
	if c.ttl != DefaultCacheTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultCacheTTL, c.ttl)
	}
	c = NewCache(-time.Second)
	if c.ttl != DefaultCacheTTL {
		t.Errorf("negative TTL must fall back to default, got %v", c.ttl)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("https://example.com/%d", n%4)
			for j := 0; j < 100; j++ {
				c.Set(key, Verdict{URL: key})
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if keys := c.Stats().Keys; keys != 4 {
		t.Errorf("expected 4 keys, got %d", keys)
	}
}
