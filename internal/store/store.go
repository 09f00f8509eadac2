package store

import (
	"context"
	"errors"

	"pgchart/internal/collector"
	"pgchart/internal/model"
)

var ErrTimeRange = errors.New("invalid time range: start > end")

// Store persists ticks and serves them back as a data source.
type Store interface {
	collector.Source
	// SaveTicks inserts ticks, ignoring timestamps that already exist.
	SaveTicks(ctx context.Context, ticks []model.PriceSample) (int, error)
	Count(ctx context.Context) (int, error)
	// Latest returns the most recent tick, or false when the store is empty.
	Latest(ctx context.Context) (model.PriceSample, bool, error)
	Close() error
}
