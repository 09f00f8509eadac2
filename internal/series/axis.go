package series

import (
	"errors"
	"math"

	"pgchart/internal/model"
)

// Padding applied around the extremes once the spread exceeds the band width.
const fixedPadding = 0.5

var (
	ErrEmptySeries  = errors.New("series is empty")
	ErrInvalidBand  = errors.New("band width must be positive")
	ErrInvalidRatio = errors.New("ratio must be within [0, 1]")
)

// PriceRange scans the samples once and returns the lowest and highest price.
func PriceRange(samples []model.PriceSample) (low, high float64, err error) {
	if len(samples) == 0 {
		return 0, 0, ErrEmptySeries
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, s := range samples {
		if s.Price > high {
			high = s.Price
		}
		if s.Price < low {
			low = s.Price
		}
	}
	return low, high, nil
}

// ComputeAxisRange pads the observed price range into a stable Y-axis span.
//
// When the spread is narrower than bandWidth the span is widened to exactly
// bandWidth, with ratio of the extra room placed above the maximum and the
// rest below the minimum. Otherwise 0.5 is added on both sides.
func ComputeAxisRange(samples []model.PriceSample, bandWidth, ratio float64) (model.AxisRange, error) {
	if bandWidth <= 0 {
		return model.AxisRange{}, ErrInvalidBand
	}
	if ratio < 0 || ratio > 1 {
		return model.AxisRange{}, ErrInvalidRatio
	}
	low, high, err := PriceRange(samples)
	if err != nil {
		return model.AxisRange{}, err
	}
	spread := high - low
	if spread < bandWidth {
		extra := bandWidth - spread
		return model.AxisRange{
			Min: low - extra*(1-ratio),
			Max: high + extra*ratio,
		}, nil
	}
	return model.AxisRange{Min: low - fixedPadding, Max: high + fixedPadding}, nil
}
