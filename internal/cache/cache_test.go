package cache

import (
	"testing"
	"time"
)

func TestCache_GetSetExpiry(t *testing.T) {
	c := &Cache{entries: make(map[string]entry), enabled: true}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	etag := c.Set("k", []byte(`{"a":1}`), time.Minute)
	data, got, ok := c.Get("k")
	if !ok || string(data) != `{"a":1}` || got != etag {
		t.Fatalf("Get = %q, %q, %v", data, got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	c.evict()
	stats := c.Stats()
	if stats["total_keys"] != 0 || stats["hits"] != 1 || stats["misses"] != 1 {
		t.Fatalf("Stats = %v", stats)
	}
}

func TestCache_Disabled(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("x"), time.Minute)
	if etag != ComputeETag([]byte("x")) {
		t.Error("disabled cache should still compute an ETag")
	}
	if _, _, ok := c.Get("k"); ok {
		t.Error("disabled cache returned an entry")
	}
}

func TestKey(t *testing.T) {
	a := Key("sim", map[string]string{"seed": "1", "samples": "100"})
	b := Key("sim", map[string]string{"samples": "100", "seed": "1"})
	if a != b {
		t.Fatalf("keys differ: %q v %q", a, b)
	}
	if a == Key("sim", map[string]string{"samples": "100", "seed": "2"}) {
		t.Fatal("different params share a key")
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("body"))
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{etag, true},
		{`W/"other", ` + etag, true},
		{`W/"other"`, false},
	}
	for _, tt := range tests {
		if got := CheckETagMatch(tt.header, etag); got != tt.want {
			t.Errorf("CheckETagMatch(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
