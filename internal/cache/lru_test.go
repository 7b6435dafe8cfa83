package cache

import (
	"errors"
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4")

	if _, found := c.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, k := range []string{"key2", "key3", "key4"} {
		if _, found := c.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
}

func TestLRUCacheRecencyProtectsEntry(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Error("b was least recently used and should be gone")
	}
	if v, found := c.Get("a"); !found || v != 1 {
		t.Error("a should survive after being read")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.SetClock(func() time.Time { return now })

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(30 * time.Second)
	c.Set("c", 3)

	now = now.Add(45 * time.Second)
	if _, found := c.Get("a"); found {
		t.Fatal("a should have expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected b to be swept, removed %d", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("expected only c left, size %d", c.Size())
	}
}

func TestLRUCacheGetOrLoad(t *testing.T) {
	c := NewLRUCache[string](4, time.Hour)
	calls := 0
	load := func() (string, error) {
		calls++
		return "png", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("chart:1", load)
		if err != nil || v != "png" {
			t.Fatalf("unexpected result %q %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("loader should run once, ran %d times", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("chart:2", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, found := c.Get("chart:2"); found {
		t.Fatal("errors must not be cached")
	}

	st := c.Stats()
	if st.Hits != 2 || st.Size != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestManagerSweepAndStop(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second)
	c.SetClock(func() time.Time { return now })
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	now = now.Add(2 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 entry swept, got %d", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
