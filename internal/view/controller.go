package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pgchart/internal/collector"
	"pgchart/internal/metrics"
	"pgchart/internal/model"
	"pgchart/internal/series"
)

var (
	ErrNoData = errors.New("no data for this date")
	ErrStale  = errors.New("refresh superseded by a newer request")
)

// Snapshot is the result of one refresh.
type Snapshot struct {
	RequestID string
	Mode      Mode
	Day       Day
	Tick      *model.TickChart
	History   *model.HistoryChart
	Empty     bool
}

// Err returns ErrNoData for an empty snapshot.
func (s *Snapshot) Err() error {
	if s.Empty {
		return ErrNoData
	}
	return nil
}

// Controller owns the current view mode and selected day and turns
// source data into chart snapshots.
type Controller struct {
	source collector.Source
	opts   series.ChartOptions
	loc    *time.Location

	mu         sync.Mutex
	mode       Mode
	day        Day
	generation uint64
	cancel     context.CancelFunc
}

// NewController starts in TickView on today's date.
func NewController(source collector.Source, opts series.ChartOptions, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		source: source,
		opts:   opts,
		loc:    loc,
		mode:   TickView,
		day:    DayOf(time.Now().In(loc)),
	}
}

// Options returns the chart options used for tick charts.
func (c *Controller) Options() series.ChartOptions {
	return c.opts
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Day returns the selected day.
func (c *Controller) Day() Day {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// Toggle switches between tick and history view and returns the new mode.
func (c *Controller) Toggle() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = c.mode.Toggle()
	c.supersedeLocked()
	return c.mode
}

// SetMode forces a mode. Like Toggle and SelectDay it discards any refresh
// still in flight.
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	c.supersedeLocked()
}

// SelectDate parses and selects a day for the tick view.
func (c *Controller) SelectDate(s string) (Day, error) {
	d, err := ParseDay(s, c.loc)
	if err != nil {
		return Day{}, err
	}
	c.SelectDay(d)
	return d, nil
}

// SelectDay selects a day for the tick view.
func (c *Controller) SelectDay(d Day) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = d
	c.supersedeLocked()
}

// supersedeLocked marks the refresh in flight as stale and cancels it.
// c.mu must be held.
func (c *Controller) supersedeLocked() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Refresh fetches data for the current mode and day. Starting a refresh
// cancels any refresh still in flight; a refresh that has been superseded
// returns ErrStale instead of its result.
func (c *Controller) Refresh(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.generation++
	gen := c.generation
	c.cancel = cancel
	mode, day := c.mode, c.day
	c.mu.Unlock()
	defer cancel()

	snap := &Snapshot{RequestID: uuid.NewString(), Mode: mode, Day: day}
	logger := log.With().Str("request_id", snap.RequestID).Str("mode", mode.String()).Logger()
	logger.Debug().Str("day", day.String()).Msg("refreshing view")

	var err error
	switch mode {
	case TickView:
		err = c.fillTick(ctx, snap)
	case HistoryView:
		err = c.fillHistory(ctx, snap)
	default:
		err = fmt.Errorf("unknown mode %d", mode)
	}

	c.mu.Lock()
	current := c.generation == gen
	if current {
		c.cancel = nil
	}
	c.mu.Unlock()

	if !current {
		metrics.Refreshes.WithLabelValues(mode.String(), "stale").Inc()
		logger.Debug().Msg("discarding stale refresh")
		return nil, ErrStale
	}
	if err != nil {
		metrics.Refreshes.WithLabelValues(mode.String(), "error").Inc()
		return nil, err
	}
	if snap.Empty {
		metrics.Refreshes.WithLabelValues(mode.String(), "empty").Inc()
	} else {
		metrics.Refreshes.WithLabelValues(mode.String(), "ok").Inc()
	}
	return snap, nil
}

func (c *Controller) fillTick(ctx context.Context, snap *Snapshot) error {
	start, end := snap.Day.Bounds()
	ticks, err := c.source.FetchTicks(ctx, start, end)
	if err != nil {
		return fmt.Errorf("fetch ticks for %s: %w", snap.Day, err)
	}
	if len(ticks) == 0 {
		snap.Empty = true
		return nil
	}
	chart, err := series.ComputeTickChart(ticks, c.opts)
	if err != nil {
		return fmt.Errorf("compute tick chart: %w", err)
	}
	chart.Date = snap.Day.String()
	chart.Start, chart.End = start, end
	snap.Tick = chart
	return nil
}

func (c *Controller) fillHistory(ctx context.Context, snap *Snapshot) error {
	candles, err := c.source.FetchDailyCandles(ctx)
	if err != nil {
		return fmt.Errorf("fetch daily candles: %w", err)
	}
	if len(candles) == 0 {
		snap.Empty = true
		return nil
	}
	snap.History = &model.HistoryChart{Candles: candles}
	return nil
}
