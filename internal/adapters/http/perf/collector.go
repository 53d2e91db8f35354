package perf

import (
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, the SQL verb and table for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector keeps the most recent timing entries in a fixed-size ring.
// Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	total   atomic.Int64
}

// NewCollector creates a collector holding at most size entries.
// A non-positive size selects DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry once the ring is full.
// Request paths are collapsed with RouteKey before storing.
func (c *Collector) Record(e Entry) {
	if e.Kind == KindRequest {
		e.Path = RouteKey(e.Path)
	}
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// RouteKey replaces path segments that carry an entity id with "{id}" so
// "/members/3f2a.../notes" and "/members/9c1b.../notes" aggregate together.
// The method prefix, when present, is kept.
func RouteKey(path string) string {
	method, p, ok := strings.Cut(path, " ")
	if !ok {
		p, method = method, ""
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if looksLikeID(s) {
			segs[i] = "{id}"
		}
	}
	p = strings.Join(segs, "/")
	if method == "" {
		return p
	}
	return method + " " + p
}

// looksLikeID treats any segment containing a digit as an id. Route names
// in this application are plain words.
func looksLikeID(seg string) bool {
	return strings.ContainsAny(seg, "0123456789")
}

// PathStat aggregates timing for a single route or query.
type PathStat struct {
	Path    string
	Count   int
	AvgMs   float64
	MaxMs   float64
	TotalMs float64
	Errors  int // responses with status >= 500
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRecorded  int64
	Requests       int
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	ClientErrors   int // 4xx
	ServerErrors   int // 5xx
	SlowestRoutes  []PathStat
	SlowestQueries []PathStat
}

// ErrorRate returns the share of requests that ended in a 5xx status.
func (s Snapshot) ErrorRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.ServerErrors) / float64(s.Requests)
}

// Snapshot aggregates entries recorded at or after since and keeps the topN
// slowest routes and queries by average duration.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	snap := Snapshot{TotalRecorded: c.TotalRecorded()}
	var durations []float64
	routes := make(map[string]*PathStat)
	queries := make(map[string]*PathStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		if e.Kind == KindQuery {
			accumulate(queries, e)
			continue
		}
		snap.Requests++
		durations = append(durations, e.DurationMs)
		switch {
		case e.StatusCode >= 500:
			snap.ServerErrors++
		case e.StatusCode >= 400:
			snap.ClientErrors++
		}
		accumulate(routes, e)
	}

	snap.SlowestRoutes = topByAvg(routes, topN)
	snap.SlowestQueries = topByAvg(queries, topN)
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

func accumulate(stats map[string]*PathStat, e Entry) {
	s, ok := stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
	if e.StatusCode >= 500 {
		s.Errors++
	}
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
