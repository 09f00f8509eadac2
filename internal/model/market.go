package model

import (
	"fmt"
	"time"
)

// PriceSample is one observed bank-buy price at one instant.
type PriceSample struct {
	Timestamp int64   `json:"t"` // unix seconds
	Price     float64 `json:"p"`
}

func (p PriceSample) String() string {
	return fmt.Sprintf("%s | %.2f", time.Unix(p.Timestamp, 0).Format("2006-01-02 15:04:05"), p.Price)
}

// DayCandle is a daily open/high/low/close summary.
type DayCandle struct {
	Timestamp int64   `json:"t"` // local midnight, unix seconds
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
}

func (c DayCandle) String() string {
	return fmt.Sprintf("%s | open: %.2f/ high: %.2f/ low: %.2f/ close: %.2f",
		time.Unix(c.Timestamp, 0).Format("2006-01-02"), c.Open, c.High, c.Low, c.Close)
}

// ChangePercent returns the close-over-open move in percent.
func (c DayCandle) ChangePercent() float64 {
	if c.Open == 0 {
		return 0
	}
	return (c.Close - c.Open) / c.Open * 100
}
