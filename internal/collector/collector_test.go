package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pgchart/internal/model"
)

func TestRESTSource_FetchTicks(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tickPath {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`[{"t":1700000060,"p":281.5},{"t":1700000000,"p":281.2}]`))
	}))
	defer srv.Close()

	src := NewRESTSource(srv.URL, "secret", "")
	ticks, err := src.FetchTicks(context.Background(), 1700000000, 1700086399)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(ticks))
	}
	if ticks[0].Timestamp != 1700000000 || ticks[1].Price != 281.5 {
		t.Errorf("ticks not sorted by timestamp: %v", ticks)
	}
	if gotQuery != "end=1700086399&start=1700000000" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestRESTSource_EmptyDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]\n"))
	}))
	defer srv.Close()

	ticks, err := NewRESTSource(srv.URL, "", "").FetchTicks(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticks == nil || len(ticks) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", ticks)
	}
}

func TestRESTSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "request timestamp parameter", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewRESTSource(srv.URL, "", "").FetchTicks(context.Background(), 0, 10)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("error should carry the status, got %v", err)
	}
}

func TestRESTSource_FetchDailyCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != candlePath {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"t":1700006400,"o":280,"h":283,"l":279.5,"c":282.1}]`))
	}))
	defer srv.Close()

	candles, err := NewRESTSource(srv.URL, "", "").FetchDailyCandles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.DayCandle{Timestamp: 1700006400, Open: 280, High: 283, Low: 279.5, Close: 282.1}
	if len(candles) != 1 || candles[0] != want {
		t.Errorf("unexpected candles %v", candles)
	}
}

func TestMockSource(t *testing.T) {
	m := &MockSource{Ticks: []model.PriceSample{{Timestamp: 5, Price: 1}, {Timestamp: 15, Price: 2}}}
	ticks, err := m.FetchTicks(context.Background(), 0, 10)
	if err != nil || len(ticks) != 1 {
		t.Fatalf("expected 1 tick in range, got %v (%v)", ticks, err)
	}

	gen := &MockSource{BasePrice: 280}
	ticks, _ = gen.FetchTicks(context.Background(), 0, 3599)
	if len(ticks) != 120 {
		t.Errorf("expected 120 generated ticks, got %d", len(ticks))
	}

	failing := &MockSource{Err: errors.New("boom")}
	if _, err := failing.FetchDailyCandles(context.Background()); err == nil {
		t.Error("expected configured error")
	}
}

func TestParseQuote(t *testing.T) {
	tick, err := ParseQuote([]byte(`{"t":1700000000,"p":"281.456"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick.Price != 281.46 || tick.Timestamp != 1700000000 {
		t.Errorf("unexpected tick %+v", tick)
	}
	if _, err := ParseQuote([]byte(`{"t":1700000000,"p":"abc"}`)); err == nil {
		t.Error("expected error for bad price")
	}
	if _, err := ParseQuote([]byte(`{"p":"1.0"}`)); err == nil {
		t.Error("expected error for missing timestamp")
	}
}

func TestFeed_DeliversTicks(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"t":1,"p":"280.10"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"t":31,"p":"280.20"}`))
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	feed := NewFeed("ws" + strings.TrimPrefix(srv.URL, "http"))
	feed.ReconnectDelay = time.Hour

	var mu sync.Mutex
	var got []model.PriceSample
	received := make(chan struct{}, 2)
	feed.AddHandler(func(p model.PriceSample) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
		received <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for ticks")
		}
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0].Price != 280.10 || got[1].Timestamp != 31 {
		t.Errorf("unexpected ticks %v", got)
	}
}
