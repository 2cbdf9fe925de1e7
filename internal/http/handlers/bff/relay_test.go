package bff

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"
)

type memoryResponseCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryResponseCache() *memoryResponseCache {
	return &memoryResponseCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryResponseCache) Enabled() bool { return true }

func (m *memoryResponseCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	raw, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryResponseCache) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = raw
	m.ttls[key] = ttl
	m.mu.Unlock()
	return nil
}

func (m *memoryResponseCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestCatalogResponseReplayedFromCache(t *testing.T) {
	fake := &fakeUpstream{body: `{"success":true,"data":{"categories":[{"id":1,"name":"Fiction"}]}}`}
	r, h := setupBFF(t, fake)
	responses := newMemoryResponseCache()
	h.responses = responses
	h.cacheTTL = time.Minute

	first := doRequest(r, http.MethodGet, "/api/get-categories", "", nil)
	if first.Code != http.StatusOK || first.Header().Get(cacheHeader) != "MISS" {
		t.Fatalf("first request want 200 MISS got %d %q", first.Code, first.Header().Get(cacheHeader))
	}
	second := doRequest(r, http.MethodGet, "/api/get-categories", "", nil)
	if second.Code != http.StatusOK || second.Header().Get(cacheHeader) != "HIT" {
		t.Fatalf("second request want 200 HIT got %d %q", second.Code, second.Header().Get(cacheHeader))
	}
	if second.Body.String() != fake.body {
		t.Fatalf("cached body should match upstream, got %s", second.Body.String())
	}
	if len(fake.calls) != 1 {
		t.Fatalf("upstream should be called once, got %d", len(fake.calls))
	}
	for key, ttl := range responses.ttls {
		if ttl != time.Minute {
			t.Fatalf("entry %s ttl want 1m got %s", key, ttl)
		}
	}
}

func TestCatalogCacheKeyIncludesQuery(t *testing.T) {
	fake := &fakeUpstream{body: `{"success":true,"data":{"books":[]}}`}
	r, h := setupBFF(t, fake)
	responses := newMemoryResponseCache()
	h.responses = responses
	h.cacheTTL = time.Minute

	doRequest(r, http.MethodGet, "/api/get-book?page=1", "", nil)
	w := doRequest(r, http.MethodGet, "/api/get-book?page=2", "", nil)
	if w.Header().Get(cacheHeader) != "MISS" {
		t.Fatalf("different page must not hit the cache")
	}
	if responses.size() != 2 || len(fake.calls) != 2 {
		t.Fatalf("want 2 entries and 2 calls, got %d/%d", responses.size(), len(fake.calls))
	}
}

func TestCatalogErrorsAreNotCached(t *testing.T) {
	fake := &fakeUpstream{status: http.StatusServiceUnavailable, body: `{"message":"down"}`}
	r, h := setupBFF(t, fake)
	responses := newMemoryResponseCache()
	h.responses = responses
	h.cacheTTL = time.Minute

	for i := 0; i < 2; i++ {
		w := doRequest(r, http.MethodGet, "/api/get-author", "", nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status want 503 got %d", w.Code)
		}
		if w.Header().Get(cacheHeader) != "MISS" {
			t.Fatalf("error responses must never be replayed")
		}
		if w.Body.String() != `{"error":{"message":"down"}}` {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	}
	if responses.size() != 0 {
		t.Fatalf("non-2xx response should not be cached")
	}
	if len(fake.calls) != 2 {
		t.Fatalf("each request should reach upstream, got %d", len(fake.calls))
	}
}

func TestCacheSkippedWithoutTTL(t *testing.T) {
	fake := &fakeUpstream{body: `{"success":true}`}
	r, h := setupBFF(t, fake)
	responses := newMemoryResponseCache()
	h.responses = responses

	w := doRequest(r, http.MethodGet, "/api/get-author", "", nil)
	if w.Header().Get(cacheHeader) != "" || responses.size() != 0 {
		t.Fatalf("zero ttl should bypass the cache")
	}
}
