package charging

import (
	"sync"

	"github.com/evmobility/urbanev/core/events"
)

// OccupancyEntry is one time-stamped plugged-vehicle count for a charger.
type OccupancyEntry struct {
	TimeSeconds  float64
	PluggedCount int
}

// OccupancyHistory records charger occupancy over time from session
// lifecycle events. It can be fed directly via Handle or run against an
// event bus subscription.
type OccupancyHistory struct {
	mu        sync.Mutex
	histories map[string][]OccupancyEntry
}

// NewOccupancyHistory creates an empty history.
func NewOccupancyHistory() *OccupancyHistory {
	return &OccupancyHistory{histories: make(map[string][]OccupancyEntry)}
}

// Handle records one session event. Only plug and unplug transitions carry
// occupancy information.
func (h *OccupancyHistory) Handle(ev events.SessionEvent) {
	if ev.Kind != events.SessionPlugged && ev.Kind != events.SessionUnplugged {
		return
	}
	h.mu.Lock()
	h.histories[ev.ChargerID] = append(h.histories[ev.ChargerID], OccupancyEntry{
		TimeSeconds:  ev.TimeSeconds,
		PluggedCount: ev.PluggedCount,
	})
	h.mu.Unlock()
}

// Run consumes session events from the channel until it is closed.
// Typically invoked as a goroutine over a bus subscription.
func (h *OccupancyHistory) Run(ch <-chan events.SessionEvent) {
	for ev := range ch {
		h.Handle(ev)
	}
}

// History returns the recorded entries for a charger, in arrival order.
func (h *OccupancyHistory) History(chargerID string) []OccupancyEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := h.histories[chargerID]
	out := make([]OccupancyEntry, len(entries))
	copy(out, entries)
	return out
}
