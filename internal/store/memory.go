package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"pgchart/internal/metrics"
	"pgchart/internal/model"
	"pgchart/internal/series"
)

// MemoryStore keeps ticks in a sorted slice. Used when SQLite is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	ticks []model.PriceSample
	loc   *time.Location
}

func NewMemoryStore(loc *time.Location) *MemoryStore {
	if loc == nil {
		loc = time.Local
	}
	return &MemoryStore{loc: loc}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) SaveTicks(_ context.Context, ticks []model.PriceSample) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, t := range ticks {
		i := sort.Search(len(m.ticks), func(i int) bool { return m.ticks[i].Timestamp >= t.Timestamp })
		if i < len(m.ticks) && m.ticks[i].Timestamp == t.Timestamp {
			continue
		}
		m.ticks = append(m.ticks, model.PriceSample{})
		copy(m.ticks[i+1:], m.ticks[i:])
		m.ticks[i] = t
		inserted++
	}
	metrics.TicksStored.Add(float64(inserted))
	return inserted, nil
}

func (m *MemoryStore) FetchTicks(_ context.Context, start, end int64) ([]model.PriceSample, error) {
	if start > end {
		return nil, ErrTimeRange
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	lo := sort.Search(len(m.ticks), func(i int) bool { return m.ticks[i].Timestamp >= start })
	hi := sort.Search(len(m.ticks), func(i int) bool { return m.ticks[i].Timestamp > end })
	out := make([]model.PriceSample, hi-lo)
	copy(out, m.ticks[lo:hi])
	return out, nil
}

func (m *MemoryStore) FetchDailyCandles(_ context.Context) ([]model.DayCandle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return series.DailyCandles(m.ticks, m.loc), nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ticks), nil
}

func (m *MemoryStore) Latest(_ context.Context) (model.PriceSample, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.ticks) == 0 {
		return model.PriceSample{}, false, nil
	}
	return m.ticks[len(m.ticks)-1], true, nil
}

func (m *MemoryStore) Close() error { return nil }
