package collector

import (
	"context"

	"pgchart/internal/model"
)

// Source supplies tick and daily candle data.
type Source interface {
	// FetchTicks returns samples with start <= timestamp <= end, ordered by timestamp.
	// An empty result means there was no trading data in the range.
	FetchTicks(ctx context.Context, start, end int64) ([]model.PriceSample, error)
	FetchDailyCandles(ctx context.Context) ([]model.DayCandle, error)
	Name() string
}
