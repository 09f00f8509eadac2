package series

import (
	"fmt"

	"pgchart/internal/model"
)

// ChartOptions tunes ComputeTickChart.
type ChartOptions struct {
	Density   int
	BandWidth float64
	Ratio     float64
}

// DefaultChartOptions matches the tick view of the web page.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Density: DefaultDensity, BandWidth: 3.0, Ratio: 0.8}
}

// ComputeTickChart downsamples one day of samples and computes its axis range.
// Empty input returns ErrEmptySeries.
func ComputeTickChart(samples []model.PriceSample, opts ChartOptions) (*model.TickChart, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySeries
	}
	rng, err := ComputeAxisRange(samples, opts.BandWidth, opts.Ratio)
	if err != nil {
		return nil, fmt.Errorf("axis range: %w", err)
	}
	low, high, err := PriceRange(samples)
	if err != nil {
		return nil, err
	}
	return &model.TickChart{
		Samples: len(samples),
		Stride:  Stride(len(samples), opts.Density),
		Points:  Downsample(samples, opts.Density),
		High:    high,
		Low:     low,
		Range:   rng,
		Last:    samples[len(samples)-1],
	}, nil
}
