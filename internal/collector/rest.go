package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"pgchart/internal/metrics"
	"pgchart/internal/model"
)

const (
	tickPath   = "/papergold/price/tick/json/by/timestamp"
	candlePath = "/papergold/price/kline/json/all/day"
)

// RESTSource implements Source against the paper-gold JSON endpoints.
type RESTSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTSource creates a source with optional proxy support.
func NewRESTSource(baseURL, apiKey, proxyURL string) *RESTSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *RESTSource) Name() string { return "rest" }

func (s *RESTSource) FetchTicks(ctx context.Context, start, end int64) ([]model.PriceSample, error) {
	q := url.Values{}
	q.Set("start", strconv.FormatInt(start, 10))
	q.Set("end", strconv.FormatInt(end, 10))
	endpoint := s.BaseURL + tickPath + "?" + q.Encode()

	var ticks []model.PriceSample
	if err := s.getJSON(ctx, endpoint, "ticks", &ticks); err != nil {
		return nil, fmt.Errorf("fetch ticks: %w", err)
	}
	if ticks == nil {
		ticks = []model.PriceSample{}
	}
	sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].Timestamp < ticks[j].Timestamp })
	return ticks, nil
}

func (s *RESTSource) FetchDailyCandles(ctx context.Context) ([]model.DayCandle, error) {
	var candles []model.DayCandle
	if err := s.getJSON(ctx, s.BaseURL+candlePath, "candles", &candles); err != nil {
		return nil, fmt.Errorf("fetch daily candles: %w", err)
	}
	if candles == nil {
		candles = []model.DayCandle{}
	}
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })
	return candles, nil
}

func (s *RESTSource) getJSON(ctx context.Context, endpoint, kind string, out any) error {
	start := time.Now()
	defer func() {
		metrics.SourceRequestDuration.WithLabelValues(s.Name(), kind).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		metrics.SourceErrors.WithLabelValues(s.Name(), kind).Inc()
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.SourceErrors.WithLabelValues(s.Name(), kind).Inc()
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.SourceErrors.WithLabelValues(s.Name(), kind).Inc()
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	return nil
}
