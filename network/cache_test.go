package network

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// fakeClock returns a cache whose clock is driven by the returned pointer.
func fakeClock(size int) (*Cache, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(size)
	c.now = func() time.Time { return now }
	return c, &now
}

func response(headers map[string]string) *Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &Response{StatusCode: 200, Headers: h, Body: []byte("x")}
}

func TestCacheFreshness(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		after   time.Duration
		want    bool
	}{
		{"default ttl fresh", nil, time.Minute, true},
		{"default ttl stale", nil, 6 * time.Minute, false},
		{"max-age fresh", map[string]string{"Cache-Control": "public, max-age=60"}, 30 * time.Second, true},
		{"max-age stale", map[string]string{"Cache-Control": "max-age=60"}, 61 * time.Second, false},
		{"max-age wins over expires", map[string]string{"Cache-Control": "max-age=10", "Expires": "Mon, 01 Jan 2024 01:00:00 GMT"}, time.Minute, false},
		{"expires", map[string]string{"Expires": "Mon, 01 Jan 2024 01:00:00 GMT"}, 30 * time.Minute, true},
		{"no-store", map[string]string{"Cache-Control": "no-store"}, 0, false},
		{"no-cache", map[string]string{"Cache-Control": "no-cache"}, 0, false},
		{"max-age zero", map[string]string{"Cache-Control": "max-age=0"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, now := fakeClock(10)
			c.Set("u", response(tt.headers))
			*now = now.Add(tt.after)
			if _, ok := c.Get("u"); ok != tt.want {
				t.Errorf("Get() ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestCacheStaleEntriesAreDropped(t *testing.T) {
	c, now := fakeClock(10)
	c.Set("u", response(map[string]string{"Cache-Control": "max-age=1"}))
	*now = now.Add(2 * time.Second)
	c.Get("u")
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after a stale read", c.Len())
	}
}

func TestCacheEviction(t *testing.T) {
	c, now := fakeClock(2)
	for i := range 3 {
		c.Set(fmt.Sprintf("u%d", i), response(nil))
		*now = now.Add(time.Second)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("u0"); ok {
		t.Error("Expected the oldest entry to be evicted")
	}
	if _, ok := c.Get("u2"); !ok {
		t.Error("Expected the newest entry to be kept")
	}

	c.Set("u2", response(nil))
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after overwriting an entry", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear()", c.Len())
	}
}

func TestCacheDirectives(t *testing.T) {
	got := cacheDirectives(` Public, MAX-AGE="30",, no-cache`)
	want := map[string]string{"public": "", "max-age": "30", "no-cache": ""}
	if len(got) != len(want) {
		t.Fatalf("cacheDirectives() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("directive %q = %q, want %q", k, got[k], v)
		}
	}
}
