package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pgchart/internal/model"
)

var cst = time.FixedZone("CST", 8*3600)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ticks.db"), cst)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(cst),
		"sqlite": sq,
	}
}

func TestStore_SaveAndFetch(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			n, err := s.SaveTicks(ctx, []model.PriceSample{
				{Timestamp: 300, Price: 281.3},
				{Timestamp: 100, Price: 281.1},
				{Timestamp: 200, Price: 281.2},
			})
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if n != 3 {
				t.Errorf("expected 3 inserted, got %d", n)
			}

			n, err = s.SaveTicks(ctx, []model.PriceSample{{Timestamp: 200, Price: 999}, {Timestamp: 400, Price: 281.4}})
			if err != nil {
				t.Fatalf("save duplicate: %v", err)
			}
			if n != 1 {
				t.Errorf("duplicate timestamp should be ignored, inserted %d", n)
			}

			ticks, err := s.FetchTicks(ctx, 150, 400)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if len(ticks) != 3 {
				t.Fatalf("expected 3 ticks in [150, 400], got %d", len(ticks))
			}
			if ticks[0].Timestamp != 200 || ticks[0].Price != 281.2 {
				t.Errorf("first tick should be the original 200 tick, got %v", ticks[0])
			}
			if ticks[2].Timestamp != 400 {
				t.Errorf("end bound should be inclusive, got %v", ticks[2])
			}

			count, _ := s.Count(ctx)
			if count != 4 {
				t.Errorf("expected count 4, got %d", count)
			}
			latest, ok, err := s.Latest(ctx)
			if err != nil || !ok || latest.Timestamp != 400 {
				t.Errorf("unexpected latest %v ok=%v err=%v", latest, ok, err)
			}
		})
	}
}

func TestStore_EmptyRange(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ticks, err := s.FetchTicks(ctx, 0, 1000)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if ticks == nil || len(ticks) != 0 {
				t.Errorf("expected empty non-nil result, got %v", ticks)
			}
			if _, ok, _ := s.Latest(ctx); ok {
				t.Error("empty store should have no latest tick")
			}
			if _, err := s.FetchTicks(ctx, 10, 5); !errors.Is(err, ErrTimeRange) {
				t.Errorf("expected ErrTimeRange, got %v", err)
			}
		})
	}
}

func TestStore_DailyCandles(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2024, 5, 6, 10, 0, 0, 0, cst).Unix()
	day2 := time.Date(2024, 5, 7, 10, 0, 0, 0, cst).Unix()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			s.SaveTicks(ctx, []model.PriceSample{
				{Timestamp: day1, Price: 540.0},
				{Timestamp: day1 + 30, Price: 542.5},
				{Timestamp: day1 + 60, Price: 541.0},
				{Timestamp: day2, Price: 541.0},
				{Timestamp: day2 + 30, Price: 538.2},
			})
			candles, err := s.FetchDailyCandles(ctx)
			if err != nil {
				t.Fatalf("candles: %v", err)
			}
			if len(candles) != 2 {
				t.Fatalf("expected 2 candles, got %d", len(candles))
			}
			if candles[0].High != 542.5 || candles[0].Close != 541.0 {
				t.Errorf("unexpected day1 candle %+v", candles[0])
			}
			if candles[1].Low != 538.2 || candles[1].Open != 541.0 {
				t.Errorf("unexpected day2 candle %+v", candles[1])
			}
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := NewSQLiteStore(path, cst)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.SaveTicks(ctx, []model.PriceSample{{Timestamp: 1, Price: 2}})
	s.Close()

	s, err = NewSQLiteStore(path, cst)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("expected persisted tick, count %d", n)
	}
}
