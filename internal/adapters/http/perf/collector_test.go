package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_Snapshot verifies aggregation of requests and queries.
func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /members", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /members", StatusCode: 200, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "POST /members/bulk/delete", StatusCode: 403, DurationMs: 5, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "POST /comms", StatusCode: 502, DurationMs: 80, Timestamp: now})
	c.Record(Entry{Kind: KindQuery, Path: "SELECT members", DurationMs: 4, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 5 {
		t.Errorf("TotalRecorded = %d, want 5", snap.TotalRecorded)
	}
	if snap.Requests != 4 {
		t.Errorf("Requests = %d, want 4", snap.Requests)
	}
	if snap.ClientErrors != 1 || snap.ServerErrors != 1 {
		t.Errorf("errors = %d/%d, want 1/1", snap.ClientErrors, snap.ServerErrors)
	}
	if got := snap.ErrorRate(); got != 0.25 {
		t.Errorf("ErrorRate = %v, want 0.25", got)
	}
	if len(snap.SlowestRoutes) != 3 {
		t.Fatalf("SlowestRoutes len = %d, want 3", len(snap.SlowestRoutes))
	}
	if top := snap.SlowestRoutes[0]; top.Path != "POST /comms" || top.Errors != 1 {
		t.Errorf("slowest = %+v, want POST /comms with 1 error", top)
	}
	if snap.SlowestRoutes[1].AvgMs != 20 {
		t.Errorf("GET /members AvgMs = %v, want 20", snap.SlowestRoutes[1].AvgMs)
	}
	if len(snap.SlowestQueries) != 1 {
		t.Fatalf("SlowestQueries len = %d, want 1", len(snap.SlowestQueries))
	}
}

// TestCollector_RouteKeyCollapsesIDs verifies id segments aggregate together.
func TestCollector_RouteKeyCollapsesIDs(t *testing.T) {
	tests := map[string]string{
		"GET /members/3f2a9c1e-77b0-4c8e-9d6a-0e2f1b3c4d5e/notes": "GET /members/{id}/notes",
		"POST /admins/a1/delete":                                  "POST /admins/{id}/delete",
		"GET /members/follow-up":                                  "GET /members/follow-up",
		"/overview":                                               "/overview",
	}
	for in, want := range tests {
		if got := RouteKey(in); got != want {
			t.Errorf("RouteKey(%q) = %q, want %q", in, got, want)
		}
	}

	c := NewCollector(10)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Path: "GET /members/m1/notes", StatusCode: 200, DurationMs: 1, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /members/m2/notes", StatusCode: 200, DurationMs: 3, Timestamp: now})
	snap := c.Snapshot(now.Add(-time.Second), 5)
	if len(snap.SlowestRoutes) != 1 || snap.SlowestRoutes[0].Count != 2 {
		t.Errorf("SlowestRoutes = %+v, want one route with count 2", snap.SlowestRoutes)
	}
}

// TestCollector_RingBuffer_Overwrites verifies oldest entries are overwritten when full.
func TestCollector_RingBuffer_Overwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /admins", DurationMs: float64(i), Timestamp: now})
	}

	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.Requests != 3 {
		t.Errorf("Requests = %d, want 3 (ring kept the last 3)", snap.Requests)
	}
	if snap.SlowestRoutes[0].MaxMs != 4 {
		t.Errorf("MaxMs = %v, want 4", snap.SlowestRoutes[0].MaxMs)
	}
}

// TestCollector_Percentiles verifies P50/P95/P99 interpolation.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()
	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /overview", DurationMs: float64(i), Timestamp: now})
	}

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.RequestP50Ms < 49 || snap.RequestP50Ms > 51 {
		t.Errorf("P50 = %v, want ~50", snap.RequestP50Ms)
	}
	if snap.RequestP95Ms < 94 || snap.RequestP95Ms > 96 {
		t.Errorf("P95 = %v, want ~95", snap.RequestP95Ms)
	}
	if snap.RequestP99Ms < 98 || snap.RequestP99Ms > 100 {
		t.Errorf("P99 = %v, want ~99", snap.RequestP99Ms)
	}
}

// TestCollector_Snapshot_FiltersBySince verifies old entries are excluded.
func TestCollector_Snapshot_FiltersBySince(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()
	c.Record(Entry{Kind: KindRequest, Path: "GET /old", DurationMs: 100, Timestamp: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindRequest, Path: "GET /new", DurationMs: 10, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Hour), 10)
	if len(snap.SlowestRoutes) != 1 || snap.SlowestRoutes[0].Path != "GET /new" {
		t.Errorf("SlowestRoutes = %+v, want only GET /new", snap.SlowestRoutes)
	}
}

// TestCollector_ConcurrentRecord exercises Record under the race detector.
func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(64)
	now := time.Now()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(Entry{Kind: KindQuery, Path: "UPDATE members", DurationMs: 1, Timestamp: now})
			}
		}()
	}
	wg.Wait()
	if c.TotalRecorded() != 800 {
		t.Errorf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
}
