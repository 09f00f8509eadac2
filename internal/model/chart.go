package model

import "encoding/json"

// DownsampledPoint is a plotted (timestamp_ms, price) pair.
type DownsampledPoint struct {
	TimestampMs int64
	Price       float64
}

// MarshalJSON encodes the point as [ms, price].
func (p DownsampledPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.TimestampMs, p.Price})
}

// UnmarshalJSON decodes a [ms, price] pair.
func (p *DownsampledPoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.TimestampMs = int64(pair[0])
	p.Price = pair[1]
	return nil
}

// AxisRange is a padded vertical axis span.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r AxisRange) Span() float64 { return r.Max - r.Min }

// TickChart holds the intraday line-chart data for one day.
type TickChart struct {
	Date    string             `json:"date"`
	Start   int64              `json:"start"`
	End     int64              `json:"end"`
	Samples int                `json:"samples"`
	Stride  int                `json:"stride"`
	Points  []DownsampledPoint `json:"points"`
	High    float64            `json:"high"`
	Low     float64            `json:"low"`
	Range   AxisRange          `json:"range"`
	Last    PriceSample        `json:"last"`
}

// HistoryChart holds the daily candlestick data.
type HistoryChart struct {
	Candles []DayCandle `json:"candles"`
}

// Latest returns the most recent candle.
func (h HistoryChart) Latest() (DayCandle, bool) {
	if len(h.Candles) == 0 {
		return DayCandle{}, false
	}
	return h.Candles[len(h.Candles)-1], true
}
