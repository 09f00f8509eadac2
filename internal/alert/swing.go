package alert

import (
	"math"
	"time"

	"pgchart/internal/model"
)

// Swing describes the price movement inside the watch window.
type Swing struct {
	Window    time.Duration
	Threshold float64
	Current   float64
	High      float64
	Low       float64
	Triggered bool
}

// Drop is how far the current price sits below the window high.
func (s Swing) Drop() float64 { return s.High - s.Current }

// Rise is how far the current price sits above the window low.
func (s Swing) Rise() float64 { return s.Current - s.Low }

// Evaluate inspects samples inside [now-window, now] and triggers when the
// latest price moved more than threshold away from the window high or low.
// ok is false when the window holds no samples.
func Evaluate(samples []model.PriceSample, now time.Time, window time.Duration, threshold float64) (swing Swing, ok bool) {
	from := now.Add(-window).Unix()
	to := now.Unix()

	swing = Swing{Window: window, Threshold: threshold, High: math.Inf(-1), Low: math.Inf(1)}
	for _, s := range samples {
		if s.Timestamp < from || s.Timestamp > to {
			continue
		}
		ok = true
		if s.Price > swing.High {
			swing.High = s.Price
		}
		if s.Price < swing.Low {
			swing.Low = s.Price
		}
		swing.Current = s.Price
	}
	if !ok {
		return Swing{Window: window, Threshold: threshold}, false
	}
	swing.Triggered = swing.Drop() > threshold || swing.Rise() > threshold
	return swing, true
}
