package simulation

import (
	"math"
	"sort"

	"quantsim/internal/models"
)

// Server and client may disagree by up to half a simulated minute
// before the server snaps to the client's reported position.
const maxClientDriftMinutes = 0.5

// Start activates the state and opens trade acceptance.
func Start(state *models.SimulationState) {
	state.Active = true
	state.TradeActive = true
	state.Paused = false
}

// Pause marks the state paused. Trade gating is independent: pausing
// alone does not clear TradeActive.
func Pause(state *models.SimulationState) {
	state.Paused = true
}

// Resume clears the paused flag. A no-op on a non-paused state.
func Resume(state *models.SimulationState) {
	state.Paused = false
}

// Terminate deactivates the state and closes trade acceptance. Removal
// from the store is the caller's responsibility.
func Terminate(state *models.SimulationState) {
	state.Active = false
	state.TradeActive = false
}

// SetDisplayTime moves the display cursor to a pre-generated step,
// replacing the active side-trade offers wholesale. An out-of-range
// index is ignored, not an error.
func SetDisplayTime(state *models.SimulationState, index int) bool {
	if index < 0 || index >= len(state.PreGeneratedData) {
		return false
	}
	step := state.PreGeneratedData[index]
	state.DisplayedTimeIndex = index
	state.CurrentTimeMinutes = step.Time
	state.CurrentMultiplier = step.Multiplier
	state.PredictedFinalMultiplier = step.PredictedMultiplier
	state.ActiveSideTrades = append([]models.SideTrade(nil), step.SideTrades...)
	return true
}

// SyncResult reports where a client sync landed.
type SyncResult struct {
	TimeIndex      int  `json:"timeIndex"`
	DisplayedIndex int  `json:"displayedIndex"`
	Snapped        bool `json:"snapped"`
}

// SyncWithClient locates the client's reported times in the timeline
// and, when the server cursor has drifted more than half a simulated
// minute from the client's clock, snaps the cursor to the client's
// position. The client drives the scrubber; the server only validates
// the landing index.
func SyncWithClient(state *models.SimulationState, clientTime, clientDisplayedTime float64) SyncResult {
	result := SyncResult{
		TimeIndex:      searchTimeline(state.TimeValues, clientTime),
		DisplayedIndex: searchTimeline(state.TimeValues, clientDisplayedTime),
	}
	if math.Abs(state.CurrentTimeMinutes-clientTime) > maxClientDriftMinutes {
		result.Snapped = SetDisplayTime(state, result.TimeIndex)
	}
	return result
}

// searchTimeline returns the index of the first timeline entry >= t,
// clamped into the valid range.
func searchTimeline(times []float64, t float64) int {
	idx := sort.SearchFloat64s(times, t)
	if idx >= len(times) {
		idx = len(times) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
