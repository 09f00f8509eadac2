package series

import (
	"time"

	"pgchart/internal/model"
)

// DailyCandles groups ordered samples by calendar day in loc.
// Days with no price movement (high == low) are dropped.
func DailyCandles(samples []model.PriceSample, loc *time.Location) []model.DayCandle {
	if loc == nil {
		loc = time.Local
	}
	candles := make([]model.DayCandle, 0)
	var (
		day     model.DayCandle
		dayKey  string
		started bool
	)
	flush := func() {
		if started && day.High != day.Low {
			candles = append(candles, day)
		}
	}
	for _, s := range samples {
		tm := time.Unix(s.Timestamp, 0).In(loc)
		key := tm.Format("2006-01-02")
		if !started || key != dayKey {
			flush()
			midnight := time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, loc)
			day = model.DayCandle{
				Timestamp: midnight.Unix(),
				Open:      s.Price,
				High:      s.Price,
				Low:       s.Price,
				Close:     s.Price,
			}
			dayKey = key
			started = true
			continue
		}
		if s.Price > day.High {
			day.High = s.Price
		}
		if s.Price < day.Low {
			day.Low = s.Price
		}
		day.Close = s.Price
	}
	flush()
	return candles
}
