package alert

import (
	"path/filepath"
	"testing"
	"time"

	"pgchart/internal/model"
)

func TestEvaluate_Triggered(t *testing.T) {
	now := time.Unix(1_700_001_800, 0)
	samples := []model.PriceSample{
		{Timestamp: now.Unix() - 3600, Price: 300}, // outside window
		{Timestamp: now.Unix() - 1500, Price: 282.4},
		{Timestamp: now.Unix() - 900, Price: 283.1},
		{Timestamp: now.Unix() - 30, Price: 281.9},
	}
	swing, ok := Evaluate(samples, now, 30*time.Minute, 1.0)
	if !ok {
		t.Fatal("expected samples in window")
	}
	if swing.High != 283.1 || swing.Low != 281.9 || swing.Current != 281.9 {
		t.Errorf("unexpected swing %+v", swing)
	}
	if !swing.Triggered {
		t.Errorf("drop of %.2f should exceed threshold 1.0", swing.Drop())
	}
}

func TestEvaluate_Quiet(t *testing.T) {
	now := time.Unix(1_700_001_800, 0)
	samples := []model.PriceSample{
		{Timestamp: now.Unix() - 600, Price: 282.0},
		{Timestamp: now.Unix() - 300, Price: 282.6},
		{Timestamp: now.Unix(), Price: 282.3},
	}
	swing, ok := Evaluate(samples, now, 30*time.Minute, 1.0)
	if !ok || swing.Triggered {
		t.Errorf("small move should not trigger: %+v", swing)
	}
}

func TestEvaluate_EmptyWindow(t *testing.T) {
	now := time.Unix(1_700_001_800, 0)
	samples := []model.PriceSample{{Timestamp: 10, Price: 1}}
	if _, ok := Evaluate(samples, now, time.Minute, 1.0); ok {
		t.Error("expected no samples in window")
	}
}

func TestGuard_Cooldown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "alert.json")
	g, err := NewGuard(path, time.Hour)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	if !g.Allow(now) {
		t.Fatal("fresh guard should allow")
	}
	g.Mark(now)
	if g.Allow(now.Add(30 * time.Minute)) {
		t.Error("should be blocked inside cooldown")
	}
	if !g.Allow(now.Add(time.Hour)) {
		t.Error("should allow after cooldown")
	}

	reloaded, err := NewGuard(path, time.Hour)
	if err != nil {
		t.Fatalf("reload guard: %v", err)
	}
	st := reloaded.State()
	if !st.LastAlertAt.Equal(now) || st.AlertCount != 1 {
		t.Errorf("state not persisted: %+v", st)
	}
	if reloaded.Allow(now.Add(10 * time.Minute)) {
		t.Error("reloaded guard should keep the cooldown")
	}
}

func TestGuard_InMemory(t *testing.T) {
	g, err := NewGuard("", time.Minute)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	now := time.Now()
	g.Mark(now)
	if g.Allow(now) {
		t.Error("in-memory guard should still enforce cooldown")
	}
}
