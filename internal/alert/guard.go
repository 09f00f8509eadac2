package alert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// GuardState is persisted between restarts.
type GuardState struct {
	LastAlertAt time.Time `json:"last_alert_at"`
	AlertCount  int       `json:"alert_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Guard rate-limits alerts with a cooldown persisted to a JSON file.
type Guard struct {
	mu       sync.Mutex
	state    *GuardState
	filePath string
	cooldown time.Duration
}

// NewGuard loads state from filePath. An empty path keeps state in memory only.
func NewGuard(filePath string, cooldown time.Duration) (*Guard, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Guard{state: state, filePath: filePath, cooldown: cooldown}, nil
}

// Allow reports whether the cooldown has elapsed at now.
func (g *Guard) Allow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.LastAlertAt.IsZero() || now.Sub(g.state.LastAlertAt) >= g.cooldown
}

// Mark records an alert sent at now.
func (g *Guard) Mark(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.LastAlertAt = now
	g.state.AlertCount++
	if err := SaveState(g.filePath, g.state); err != nil {
		log.Error().Err(err).Str("path", g.filePath).Msg("failed to save alert state")
	}
}

// State returns a copy of the current state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return *g.state
}

// LoadState reads the guard state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*GuardState, error) {
	if filePath == "" {
		return &GuardState{}, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &GuardState{}, nil
		}
		return nil, err
	}
	var state GuardState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the guard state to a JSON file.
func SaveState(filePath string, state *GuardState) error {
	if filePath == "" {
		return nil
	}
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
