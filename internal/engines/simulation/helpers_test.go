package simulation

import (
	"quantsim/internal/models"
)

func sampleCollections() models.Collections {
	return models.Collections{AOxygen: 10, ALithium: 20, BOxygen: 30, BLithium: 40}
}

// activeState builds a minimal started state for trade tests.
func activeState() *models.SimulationState {
	state := newTestFactory(5).Create("alice", "session:alice", Config{Rounds: 5, SimulationMinutes: 10, SpeedMultiplier: 1})
	Start(state)
	return state
}
