package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pgchart/internal/metrics"
	"pgchart/internal/model"
)

// TickHandler receives every tick decoded from the feed.
type TickHandler func(model.PriceSample)

// quoteMessage is one message of the live quote stream.
type quoteMessage struct {
	Timestamp int64  `json:"t"`
	Price     string `json:"p"`
}

// Feed subscribes to a websocket quote stream and reconnects on failure.
type Feed struct {
	URL            string
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
	handlers       []TickHandler
	received       int
}

// NewFeed creates a feed for the given websocket URL.
func NewFeed(url string) *Feed {
	return &Feed{
		URL:            url,
		ReconnectDelay: 5 * time.Second,
		Dialer:         websocket.DefaultDialer,
		handlers:       make([]TickHandler, 0),
	}
}

// AddHandler registers h. Must be called before Run.
func (f *Feed) AddHandler(h TickHandler) {
	f.handlers = append(f.handlers, h)
}

// Run connects and reads until ctx is cancelled, reconnecting after errors.
func (f *Feed) Run(ctx context.Context) {
	for {
		err := f.listen(ctx)
		metrics.FeedConnected.Set(0)
		if ctx.Err() != nil {
			log.Info().Str("url", f.URL).Msg("quote feed stopped")
			return
		}
		log.Warn().Err(err).Dur("retry_in", f.ReconnectDelay).Msg("quote feed disconnected")
		select {
		case <-ctx.Done():
			return
		case <-time.After(f.ReconnectDelay):
		}
	}
}

func (f *Feed) listen(ctx context.Context) error {
	conn, _, err := f.Dialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return fmt.Errorf("dial quote feed: %w", err)
	}
	defer conn.Close()
	metrics.FeedConnected.Set(1)
	log.Info().Str("url", f.URL).Msg("connected to quote feed")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("feed closed by server")
			}
			return fmt.Errorf("read quote: %w", err)
		}
		tick, err := ParseQuote(message)
		if err != nil {
			log.Warn().Err(err).Msg("skip malformed quote")
			continue
		}
		f.received++
		if f.received%100 == 0 {
			log.Debug().Int("received", f.received).Float64("price", tick.Price).Msg("quote feed progress")
		}
		for _, h := range f.handlers {
			h(tick)
		}
	}
}

// ParseQuote decodes a {"t": unix, "p": "decimal"} message, rounding the price to cents.
func ParseQuote(message []byte) (model.PriceSample, error) {
	var q quoteMessage
	if err := json.Unmarshal(message, &q); err != nil {
		return model.PriceSample{}, fmt.Errorf("decode quote: %w", err)
	}
	if q.Timestamp <= 0 {
		return model.PriceSample{}, fmt.Errorf("quote has no timestamp")
	}
	d, err := decimal.NewFromString(q.Price)
	if err != nil {
		return model.PriceSample{}, fmt.Errorf("parse price %q: %w", q.Price, err)
	}
	price, _ := d.Round(2).Float64()
	return model.PriceSample{Timestamp: q.Timestamp, Price: price}, nil
}
