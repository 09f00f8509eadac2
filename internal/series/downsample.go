package series

import "pgchart/internal/model"

const (
	// ReferenceCadence is the nominal number of ticks in a full day (two per minute).
	ReferenceCadence = 24 * 60 * 2
	// DefaultDensity is the stride multiplier used for a full reference day.
	DefaultDensity = 15
)

// Stride returns max(1, ceil(n / ReferenceCadence * density)).
// A non-positive density is treated as 1.
func Stride(n, density int) int {
	if density <= 0 {
		density = 1
	}
	if n <= 0 {
		return 1
	}
	s := (n*density + ReferenceCadence - 1) / ReferenceCadence
	if s < 1 {
		return 1
	}
	return s
}

// Downsample keeps every stride-th sample plus the final one, converting
// timestamps to milliseconds. Input order is preserved.
func Downsample(samples []model.PriceSample, density int) []model.DownsampledPoint {
	n := len(samples)
	if n == 0 {
		return []model.DownsampledPoint{}
	}
	stride := Stride(n, density)
	points := make([]model.DownsampledPoint, 0, n/stride+2)
	for i, s := range samples {
		if i%stride != 0 && i != n-1 {
			continue
		}
		points = append(points, model.DownsampledPoint{
			TimestampMs: s.Timestamp * 1000,
			Price:       s.Price,
		})
	}
	return points
}
