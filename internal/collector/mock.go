package collector

import (
	"context"
	"math"

	"pgchart/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Ticks   []model.PriceSample
	Candles []model.DayCandle
	Err     error

	// BasePrice drives generated ticks when Ticks is nil.
	BasePrice float64
	// Step is the spacing of generated ticks in seconds (default 30).
	Step int64
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchTicks(ctx context.Context, start, end int64) ([]model.PriceSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Ticks == nil {
		return generateTicks(m.BasePrice, start, end, m.Step), nil
	}
	out := make([]model.PriceSample, 0)
	for _, t := range m.Ticks {
		if t.Timestamp >= start && t.Timestamp <= end {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockSource) FetchDailyCandles(ctx context.Context) ([]model.DayCandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Candles == nil {
		return []model.DayCandle{}, nil
	}
	return m.Candles, nil
}

func generateTicks(basePrice float64, start, end, step int64) []model.PriceSample {
	if basePrice <= 0 || end < start {
		return []model.PriceSample{}
	}
	if step <= 0 {
		step = 30
	}
	ticks := make([]model.PriceSample, 0, (end-start)/step+1)
	for ts, i := start, 0; ts <= end; ts, i = ts+step, i+1 {
		p := basePrice + math.Sin(float64(i)/60)*0.8
		ticks = append(ticks, model.PriceSample{Timestamp: ts, Price: math.Round(p*100) / 100})
	}
	return ticks
}
