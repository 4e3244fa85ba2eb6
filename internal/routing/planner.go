// Package routing turns the ordered stops of a delivery into an itinerary.
package routing

import (
	"context"
	"fmt"
	"sync"
)

// Itinerary summarises a route over the stops, in the order given.
type Itinerary struct {
	Stops           []string `json:"stops"`
	DistanceMeters  float64  `json:"distance_meters"`
	DurationSeconds float64  `json:"duration_seconds"`
	Provider        string   `json:"provider"`
}

// Summary is the human-readable form shown to drivers.
func (it *Itinerary) Summary() string {
	return fmt.Sprintf("%d stops, %.1f km, about %d min",
		len(it.Stops), it.DistanceMeters/1000, int(it.DurationSeconds/60+0.5))
}

type Planner interface {
	Plan(ctx context.Context, stops []string) (*Itinerary, error)
}

// MockPlanner prices every leg at a fixed distance and duration and records
// the stops it was asked for.
type MockPlanner struct {
	LegMeters  float64
	LegSeconds float64
	Err        error

	mu    sync.Mutex
	calls [][]string
}

func NewMockPlanner() *MockPlanner {
	return &MockPlanner{LegMeters: 1500, LegSeconds: 240}
}

func (m *MockPlanner) Plan(ctx context.Context, stops []string) (*Itinerary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]string(nil), stops...))
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	legs := float64(len(stops) - 1)
	if legs < 0 {
		legs = 0
	}
	return &Itinerary{
		Stops:           append([]string(nil), stops...),
		DistanceMeters:  legs * m.LegMeters,
		DurationSeconds: legs * m.LegSeconds,
		Provider:        "mock",
	}, nil
}

func (m *MockPlanner) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.calls...)
}
